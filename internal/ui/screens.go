package ui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/haarview/internal/policy"
	"github.com/five82/haarview/internal/preview"
	"github.com/five82/haarview/internal/workflow"
)

// previewCache keeps the last rendered preview, centred in its area, so View
// does not resample the image on every frame.
type previewCache struct {
	img        image.Image
	cols, rows int
	out        string
}

func (c *previewCache) render(img image.Image, cols, rows int) string {
	if c.img == img && c.cols == cols && c.rows == rows && c.out != "" {
		return c.out
	}
	c.img, c.cols, c.rows = img, cols, rows
	w, _ := preview.Size(img, cols, rows)
	c.out = lipgloss.NewStyle().MarginLeft(max((cols-w)/2, 0)).Render(preview.Render(img, cols, rows))
	return c.out
}

func (m Model) renderHome() string {
	styles := m.theme.Styles()
	options := []struct {
		key, title, desc string
	}{
		{"c", "Compress", "Upload a .bmp and step through its Haar wavelet decomposition."},
		{"d", "Decompress", "Upload a .compressed artifact and recover the bitmap."},
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("What would you like to do?"))
	b.WriteString("\n\n")
	for i, opt := range options {
		panel := styles.Panel
		if i == m.homeIndex {
			panel = styles.FocusPanel
		}
		body := styles.Key.Render(opt.key) + "  " + styles.AccentText.Bold(true).Render(opt.title) +
			"\n" + styles.MutedText.Render(opt.desc)
		b.WriteString(panel.Width(min(m.width-4, 70)).Render(body))
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) renderCompress(v workflow.CompressionView) string {
	styles := m.theme.Styles()
	if v.Phase == workflow.AwaitingUpload {
		if m.working(v.Busy) {
			return m.renderDropzone(m.spinner.View()+" Uploading", "Waiting for the service.")
		}
		return m.renderDropzone(
			"Choose a bitmap to compress",
			fmt.Sprintf("BMP images up to %s. Press o to enter a path.", humanize.IBytes(policy.MaxUploadBytes))+
				"\nNo bitmap at hand? Run haarview sample to write "+workflow.SampleName+".\n"+
				"Have an artifact already? Press d to decompress it.",
		)
	}

	source := v.Source
	if v.Width > 0 && v.Height > 0 {
		source += fmt.Sprintf(" (%d×%d)", v.Width, v.Height)
	}
	params := strings.Join([]string{
		styles.MutedText.Render("file ") + styles.Text.Render(source),
		styles.MutedText.Render("level ") + styles.AccentText.Render(fmt.Sprintf("%d/%d", v.Query.Level, workflow.MaxLevel)),
		styles.MutedText.Render("ratio ") + styles.AccentText.Render(fmt.Sprintf("%d%%", v.Query.Ratio)),
		styles.MutedText.Render("step ") + styles.AccentText.Render(fmt.Sprintf("%d/%d", v.Query.Step, v.MaxStep)),
		styles.InfoText.Render(stepLabel(v.Query.Step, v.MaxStep)),
	}, "   ")

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Padding(0, 1).Render(params))
	b.WriteString("\n")
	b.WriteString(m.renderFrame(v))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Padding(0, 1).Render(m.stepHints(v)))
	return b.String()
}

func (m Model) renderFrame(v workflow.CompressionView) string {
	styles := m.theme.Styles()
	cols, rows := m.previewArea()
	switch {
	case v.Loading && !v.HasFrame:
		return m.centered(m.spinner.View()+" loading visualization", cols, rows)
	case v.HasFrame && v.Frame.Err != "":
		return m.centered(styles.DangerText.Render("Visualization failed: ")+styles.MutedText.Render(v.Frame.Err), cols, rows)
	case v.HasFrame && v.Frame.Image != nil:
		out := m.preview.render(v.Frame.Image, cols, rows)
		if v.Loading {
			out += "\n" + m.spinner.View() + styles.MutedText.Render(" updating")
		}
		return lipgloss.NewStyle().Padding(0, 1).Render(out)
	default:
		return m.centered(styles.MutedText.Render("no visualization yet"), cols, rows)
	}
}

func (m Model) stepHints(v workflow.CompressionView) string {
	styles := m.theme.Styles()
	hint := func(enabled bool, k, label string) string {
		if !enabled {
			return styles.FaintText.Render(k + " " + label)
		}
		return styles.Key.Render(k) + " " + styles.Text.Render(label)
	}
	return strings.Join([]string{
		hint(v.CanBackward, "←", "back"),
		hint(v.CanForward, "→", "next"),
		hint(!v.Loading, "+/-", "level"),
		hint(!v.Loading, "[/]", "ratio"),
		hint(!m.working(v.Busy), "s", "download "+string(v.Handle)+policy.ArtifactExt),
		hint(!m.working(v.Busy), "o", "new image"),
		hint(true, "d", "decompress it"),
	}, "  ")
}

func (m Model) renderDecompress(v workflow.DecompressionView) string {
	styles := m.theme.Styles()
	if v.Phase != workflow.Decoded {
		if m.working(v.Busy) {
			return m.renderDropzone(m.spinner.View()+" Decompressing", "Waiting for the service.")
		}
		return m.renderDropzone(
			"Choose a compressed artifact",
			"Files ending in "+policy.ArtifactExt+". Press o to enter a path.\n"+
				"No artifact yet? Press c to compress an image first.",
		)
	}

	info := styles.MutedText.Render("decoded ") + styles.Text.Render(v.Source) +
		styles.MutedText.Render("  size ") + styles.AccentText.Render(humanize.IBytes(uint64(v.Size)))

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Padding(0, 1).Render(info))
	b.WriteString("\n")
	cols, rows := m.previewArea()
	if v.Image != nil {
		b.WriteString(lipgloss.NewStyle().Padding(0, 1).Render(m.preview.render(v.Image, cols, rows)))
	} else {
		b.WriteString(m.centered(styles.MutedText.Render("preview unavailable for this bitmap"), cols, rows))
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Padding(0, 1).Render(
		styles.Key.Render("s") + " " + styles.Text.Render("save "+workflow.DecompressedName) + "  " +
			styles.Key.Render("o") + " " + styles.Text.Render("another artifact") + "  " +
			styles.Key.Render("c") + " " + styles.Text.Render("compress an image")))
	return b.String()
}

func (m Model) renderDropzone(title, hint string) string {
	styles := m.theme.Styles()
	body := styles.Text.Bold(true).Render(title) + "\n\n" + styles.MutedText.Render(hint)
	box := styles.FocusPanel.
		BorderStyle(lipgloss.DoubleBorder()).
		Padding(1, 3).
		Width(min(m.width-4, 72)).
		Render(body)
	return lipgloss.NewStyle().Padding(1, 2).Render(box)
}

func (m Model) previewArea() (cols, rows int) {
	cols = max(m.width-4, MinPreviewCols)
	rows = max(m.height-chromeRows, MinPreviewRows)
	return cols, rows
}

func (m Model) centered(s string, cols, rows int) string {
	return lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, s)
}

// stepLabel describes what a visualization step shows.
func stepLabel(step, maxStep int) string {
	switch {
	case step <= 0:
		return "original"
	case step >= maxStep:
		return "reconstruction"
	default:
		return fmt.Sprintf("decomposition pass %d", step)
	}
}
