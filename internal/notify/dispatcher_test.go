package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/santa/internal/draw"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport captures messages and fails for configured recipients
type recordingTransport struct {
	sent   []Message
	failTo map[string]bool
}

func (r *recordingTransport) Send(ctx context.Context, msg Message) error {
	if r.failTo[msg.To[0]] {
		return fmt.Errorf("mailbox unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

var (
	twoCycle = draw.Cycle{{From: "Alice", To: "Bob"}, {From: "Bob", To: "Alice"}}

	directory = map[string]string{
		"Alice": "alice@example.com",
		"Bob":   "bob@example.com",
		"Carol": "carol@example.com",
	}
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestNotify_DryRunInlineTemplate(t *testing.T) {
	var out bytes.Buffer
	d, err := NewDispatcher(nil, Options{
		GameName: "Family 2026",
		From:     "Santa <santa@example.com>",
		Subject:  "Secret Santa",
		Template: InlineTemplate("Hi {{ .FromName }}, you give to {{ .ToName }}!"),
		Dry:      true,
		Out:      &out,
		Logger:   quiet(),
	})
	require.NoError(t, err)

	report, err := d.Notify(context.Background(), twoCycle, directory)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Printed)
	assert.Equal(t, 0, report.Sent)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("Subject: Secret Santa")))

	newGoldie(t).Assert(t, "dry_run_inline", out.Bytes())
}

func TestNotify_DryRunBuiltinTemplate(t *testing.T) {
	var out bytes.Buffer
	d, err := NewDispatcher(nil, Options{
		GameName: "Family 2026",
		From:     "Santa <santa@example.com>",
		Subject:  "Secret Santa",
		Dry:      true,
		Out:      &out,
		Logger:   quiet(),
	})
	require.NoError(t, err)

	_, err = d.Notify(context.Background(), twoCycle, directory)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "dry_run_builtin", out.Bytes())
}

func TestNotify_SendsThroughTransport(t *testing.T) {
	transport := &recordingTransport{}
	d, err := NewDispatcher(transport, Options{
		GameName: "Office",
		From:     "Santa <santa@example.com>",
		Subject:  "Your draw",
		Template: InlineTemplate("{{ .FromName }} -> {{ .ToName }}"),
		Logger:   quiet(),
	})
	require.NoError(t, err)

	cycle := draw.Cycle{
		{From: "Alice", To: "Carol"},
		{From: "Carol", To: "Bob"},
		{From: "Bob", To: "Alice"},
	}
	report, err := d.Notify(context.Background(), cycle, directory)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Sent)
	require.Len(t, transport.sent, 3)

	// Each message goes to the giver and names the receiver
	assert.Equal(t, []string{"alice@example.com"}, transport.sent[0].To)
	assert.Equal(t, "Alice -> Carol", transport.sent[0].HTML)
	assert.Equal(t, []string{"carol@example.com"}, transport.sent[1].To)
	assert.Equal(t, []string{"bob@example.com"}, transport.sent[2].To)
	for _, msg := range transport.sent {
		assert.Equal(t, "Santa <santa@example.com>", msg.From)
		assert.Equal(t, "Your draw", msg.Subject)
	}
}

func TestNotify_RedirectTo(t *testing.T) {
	transport := &recordingTransport{}
	d, err := NewDispatcher(transport, Options{
		Template:   InlineTemplate("{{ .ToName }}"),
		RedirectTo: "organizer@example.com",
		Logger:     quiet(),
	})
	require.NoError(t, err)

	_, err = d.Notify(context.Background(), twoCycle, directory)
	require.NoError(t, err)
	require.Len(t, transport.sent, 2)
	for _, msg := range transport.sent {
		assert.Equal(t, []string{"organizer@example.com"}, msg.To)
	}
}

func TestNotify_BestEffortOnFailure(t *testing.T) {
	transport := &recordingTransport{failTo: map[string]bool{"alice@example.com": true}}
	d, err := NewDispatcher(transport, Options{
		Template: InlineTemplate("{{ .ToName }}"),
		Logger:   quiet(),
	})
	require.NoError(t, err)

	report, err := d.Notify(context.Background(), twoCycle, directory)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	// Bob is still notified after Alice fails
	assert.Equal(t, 1, report.Sent)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, []string{"bob@example.com"}, transport.sent[0].To)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, "Alice", report.Failed[0].Giver)
	assert.Equal(t, "alice@example.com", report.Failed[0].Email)
	assert.Contains(t, err.Error(), "notification for 'Alice' <alice@example.com> failed: mailbox unavailable")

	var deliveryErr *DeliveryError
	require.True(t, errors.As(err, &deliveryErr))
	assert.Equal(t, "Alice", deliveryErr.Giver)
}

func TestNotify_UnknownGiver(t *testing.T) {
	transport := &recordingTransport{}
	d, err := NewDispatcher(transport, Options{Template: InlineTemplate("x"), Logger: quiet()})
	require.NoError(t, err)

	report, err := d.Notify(context.Background(), draw.Cycle{{From: "Zed", To: "Alice"}}, directory)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "notification for 'Zed' failed: no contact address")
	assert.Len(t, report.Failed, 1)
	assert.Empty(t, transport.sent)
}

func TestNotify_UnknownReceiver(t *testing.T) {
	transport := &recordingTransport{}
	d, err := NewDispatcher(transport, Options{Template: InlineTemplate("x"), Logger: quiet()})
	require.NoError(t, err)

	err = d.Send(context.Background(), draw.Pair{From: "Alice", To: "Ghost"}, directory)
	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, "Alice", deliveryErr.Giver)
	assert.Equal(t, "alice@example.com", deliveryErr.Email)
	assert.Contains(t, err.Error(), "receiver 'Ghost' is not a participant")
	assert.Empty(t, transport.sent)

	report, err := d.Notify(context.Background(), draw.Cycle{{From: "Bob", To: "Ghost"}}, directory)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Len(t, report.Failed, 1)
	assert.Empty(t, transport.sent)
}

func TestNotify_CancelledContext(t *testing.T) {
	transport := &recordingTransport{}
	d, err := NewDispatcher(transport, Options{Template: InlineTemplate("x"), Logger: quiet()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = d.Notify(ctx, twoCycle, directory)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, transport.sent)
}

func TestNewDispatcher(t *testing.T) {
	t.Run("requires a transport when sending", func(t *testing.T) {
		_, err := NewDispatcher(nil, Options{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "transport is required")
	})

	t.Run("reports template errors up front", func(t *testing.T) {
		_, err := NewDispatcher(nil, Options{Dry: true, Template: InlineTemplate("{{ .FromName ")})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse inline template")
	})

	t.Run("reports missing template files", func(t *testing.T) {
		_, err := NewDispatcher(nil, Options{Dry: true, Template: FileTemplate("/nonexistent/mail.html")})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read template file")
	})
}

func TestFileTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>{{ .FromName }} gives to {{ .ToName }} in {{ .GameName }}</p>"), 0644))

	r, err := NewRenderer(FileTemplate(path))
	require.NoError(t, err)

	body, err := r.Render(Data{FromName: "Ann", ToName: "Ben", GameName: "Club"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Ann gives to Ben in Club</p>", body)
}

func TestRender_EscapesNames(t *testing.T) {
	r, err := NewRenderer(InlineTemplate("<b>{{ .ToName }}</b>"))
	require.NoError(t, err)

	body, err := r.Render(Data{ToName: "<script>"})
	require.NoError(t, err)
	assert.Equal(t, "<b>&lt;script&gt;</b>", body)
}

func TestRender_UnknownField(t *testing.T) {
	r, err := NewRenderer(InlineTemplate("{{ .Wishlist }}"))
	require.NoError(t, err)

	_, err = r.Render(Data{FromName: "Ann"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to render notification for 'Ann'")
}

func TestSelectTemplate(t *testing.T) {
	assert.Equal(t, InlineTemplate("hi"), SelectTemplate("hi", "/x.html"))
	assert.Equal(t, FileTemplate("/x.html"), SelectTemplate("", "/x.html"))
	assert.Equal(t, FileTemplate(""), SelectTemplate("", ""))
}
