package email

import (
	"bytes"
	"html/template"
)

// TemplateManager holds the parsed notification templates.
type TemplateManager struct {
	MatchedTmpl   *template.Template
	DeliveredTmpl *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	matchedTmpl, err := template.New("matched").Parse(packageMatchedTemplate)
	if err != nil {
		return nil, err
	}

	deliveredTmpl, err := template.New("delivered").Parse(packageDeliveredTemplate)
	if err != nil {
		return nil, err
	}

	return &TemplateManager{
		MatchedTmpl:   matchedTmpl,
		DeliveredTmpl: deliveredTmpl,
	}, nil
}

// TemplateData holds the dynamic data for a notification template.
type TemplateData struct {
	Name            string
	CounterpartName string
	DestinationCity string
}

// GeneratePackageMatchedHTML executes the matched template with the data.
func (tm *TemplateManager) GeneratePackageMatchedHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.MatchedTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GeneratePackageDeliveredHTML executes the delivered template with the data.
func (tm *TemplateManager) GeneratePackageDeliveredHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.DeliveredTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const packageMatchedTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Your package has been matched!</h2>
  <p>Hi {{.Name}},</p>
  <p>{{.CounterpartName}} will carry your package to {{.DestinationCity}}.
     Open SkyCarry to message them and arrange the handover.</p>
  <p>— The SkyCarry team</p>
</body>
</html>`

const packageDeliveredTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Your package was delivered</h2>
  <p>Hi {{.Name}},</p>
  <p>{{.CounterpartName}} marked your delivery to {{.DestinationCity}} as completed.
     Please confirm and leave a review.</p>
  <p>— The SkyCarry team</p>
</body>
</html>`
