package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/runbook/internal/ui/output"
	"go.trai.ch/runbook/internal/ui/style"
)

func TestColorProfile_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile())
}

func TestNew_NoColorWritesPlainText(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := output.New(&buf)
	styled := out.String("plain").Foreground(termenv.RGBColor(string(style.Red)))
	_, _ = out.WriteString(styled.String())

	assert.Equal(t, "plain", buf.String())
}

func TestRenderer_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := output.Renderer(&bytes.Buffer{})
	rendered := r.NewStyle().Foreground(style.Green).Render("ok")

	assert.Equal(t, "ok", rendered)
}
