package presenter

import (
	"embed"
	"html/template"
	"io"
	"strconv"

	"heartrisk/form"
	"heartrisk/ml"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Option is one entry of a select control.
type Option struct {
	Label    string
	Selected bool
}

// Control is one rendered input.
type Control struct {
	Name    string
	Label   string
	Help    string
	Choice  bool
	Min     string
	Max     string
	Step    string
	Value   string
	Options []Option
	Error   string
}

// Result is the prediction block.
type Result struct {
	ProbabilityLine string
	RiskLine        string
	High            bool
}

// Page is the view model of the single page.
type Page struct {
	Title    string
	Help     []form.HelpEntry
	Controls []Control
	Warnings []string
	Result   *Result
	Error    string
	// Halted pages show HaltMessage and no form.
	Halted      bool
	HaltMessage string
}

// FormPage builds the input page. input holds the raw submitted strings
// (nil for a fresh page); fieldErrors holds per-field rejections.
func FormPage(input map[string]string, fieldErrors map[string]string, warnings []string) Page {
	defaults := form.Defaults()
	fields := form.Fields()
	controls := make([]Control, len(fields))
	for i, f := range fields {
		value, ok := input[f.Name]
		if !ok {
			value = defaults.Display(f.Name)
		}
		c := Control{
			Name:  f.Name,
			Label: f.Label,
			Help:  f.Help,
			Value: value,
			Error: fieldErrors[f.Name],
		}
		if f.Kind == form.KindChoice {
			c.Choice = true
			c.Options = make([]Option, len(f.Choices))
			for j, choice := range f.Choices {
				selected := choice.Label == value || strconv.Itoa(choice.Code) == value
				c.Options[j] = Option{Label: choice.Label, Selected: selected}
			}
		} else {
			precision := 0
			if f.Kind == form.KindFloat {
				precision = 1
			}
			c.Min = strconv.FormatFloat(f.Min, 'f', precision, 64)
			c.Max = strconv.FormatFloat(f.Max, 'f', precision, 64)
			c.Step = strconv.FormatFloat(f.Step, 'f', -1, 64)
		}
		controls[i] = c
	}
	return Page{
		Title:    Title,
		Help:     form.HelpText(),
		Controls: controls,
		Warnings: warnings,
	}
}

// WithResult attaches a prediction to the page.
func (p Page) WithResult(prediction ml.Prediction) Page {
	p.Result = &Result{
		ProbabilityLine: ProbabilityLine(prediction.Probability),
		RiskLine:        RiskLine(prediction.Label),
		High:            prediction.Label == ml.HighRisk,
	}
	return p
}

// WithError attaches a request-level error message.
func (p Page) WithError(msg string) Page {
	p.Error = msg
	return p
}

// HaltPage is shown instead of the form when no model could be loaded.
func HaltPage(message string, warnings []string) Page {
	return Page{
		Title:       Title,
		Warnings:    warnings,
		Halted:      true,
		HaltMessage: message,
	}
}

// Render writes the page as HTML.
func Render(w io.Writer, page Page) error {
	return pageTemplate.Execute(w, page)
}
