package shrtfly

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// AppURL is handed to the ShrtFly script as app_url.
	AppURL = "https://shrtfly.com/"
	// ScriptURL is the external full-page script.
	ScriptURL = "https://shrtfly.com/js/full-page-script.js"
	// ScriptHandle identifies the script tags in the page.
	ScriptHandle = "wp-shrtfly-integration"
	// ScriptVersion is appended to ScriptURL as a cache buster.
	ScriptVersion = "1.0"
)

// RenderContext describes the page being rendered.
type RenderContext struct {
	IsAdmin bool
	IsAMP   bool
}

// ShouldEmit reports whether the full-page script belongs on this page.
func ShouldEmit(cfg Configuration, rc RenderContext) bool {
	return cfg.Enabled && !rc.IsAdmin
}

// ShouldEmitAMP reports whether the AMP JSON block belongs on this page. The AMP
// hook only exists while the host runs the AMP plugin and AMP support is on.
func ShouldEmitAMP(cfg Configuration, rc RenderContext, ampPluginActive bool) bool {
	return ampPluginActive && cfg.EnabledAMP && cfg.Enabled && rc.IsAMP
}

// ScriptVar is one global variable declared before the external script loads.
type ScriptVar struct {
	Name  string
	Value any
}

// ScriptVariables lists the inline script variables in declaration order.
func ScriptVariables(cfg Configuration) []ScriptVar {
	vars := []ScriptVar{
		{Name: "app_url", Value: AppURL},
		{Name: "app_api_token", Value: SanitizeText(cfg.APIToken)},
		{Name: "app_advert", Value: cfg.AdsType.Code()},
	}

	domains := make([]string, 0, len(cfg.DomainList))
	for _, d := range cfg.DomainList {
		domains = append(domains, strings.TrimSpace(d))
	}

	switch cfg.DomainMode {
	case DomainInclude:
		vars = append(vars, ScriptVar{Name: "app_domains", Value: domains})
	case DomainExclude:
		vars = append(vars, ScriptVar{Name: "app_exclude_domains", Value: domains})
	default:
		vars = append(vars, ScriptVar{Name: "app_exclude_domains", Value: []string{}})
	}

	return vars
}

// BuildInlineScript renders ScriptVariables as consecutive `var name = value;`
// statements. Values are JSON with <, > and & escaped, so the text is safe
// inside a <script> element.
func BuildInlineScript(cfg Configuration) string {
	var b strings.Builder
	for _, v := range ScriptVariables(cfg) {
		b.WriteString("var ")
		b.WriteString(v.Name)
		b.WriteString(" = ")
		b.WriteString(encodeValue(v.Value))
		b.WriteString(";")
	}
	return b.String()
}

// encodeValue writes lists as `["a", "b"]`; everything else is plain JSON.
func encodeValue(v any) string {
	if list, ok := v.([]string); ok {
		items := make([]string, len(list))
		for i, s := range list {
			items[i] = encodeValue(s)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// ScriptResource describes how the host loads the external script.
type ScriptResource struct {
	Src      string `json:"src"`
	Version  string `json:"version"`
	Strategy string `json:"strategy"`
	InFooter bool   `json:"in_footer"`
}

// ExternalScript returns the external full-page script resource.
func ExternalScript() ScriptResource {
	return ScriptResource{
		Src:      ScriptURL,
		Version:  ScriptVersion,
		Strategy: "defer",
		InFooter: true,
	}
}

// RenderScriptTags returns the footer markup: the inline variables first, then
// the deferred external script.
func RenderScriptTags(cfg Configuration) string {
	res := ExternalScript()
	return fmt.Sprintf("<script id=\"%s-js-before\">\n%s\n</script>\n<script src=\"%s?ver=%s\" id=\"%s-js\" %s data-wp-strategy=\"%s\"></script>\n",
		ScriptHandle, BuildInlineScript(cfg), res.Src, res.Version, ScriptHandle, res.Strategy, res.Strategy)
}

// AMPPayload is the JSON object read by the ShrtFly AMP integration. It carries
// no include or exclude domain list: AMP pages do not support per-domain filtering.
type AMPPayload struct {
	AppURL      string `json:"app_url"`
	AppAPIToken string `json:"app_api_token"`
	AppAdvert   int    `json:"app_advert"`
}

// BuildAMPPayload builds the AMP variables for cfg.
func BuildAMPPayload(cfg Configuration) AMPPayload {
	return AMPPayload{
		AppURL:      AppURL,
		AppAPIToken: SanitizeText(cfg.APIToken),
		AppAdvert:   cfg.AdsType.Code(),
	}
}

// RenderAMPBlock wraps the AMP payload in its comment-delimited JSON script element.
func RenderAMPBlock(cfg Configuration) (string, error) {
	data, err := json.Marshal(BuildAMPPayload(cfg))
	if err != nil {
		return "", fmt.Errorf("encode amp payload: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!-- [START] wp_shrtfly_integration AMP -->\n")
	b.WriteString("<script type=\"application/json\" data-vars-shrtfly>\n")
	b.Write(data)
	b.WriteString("\n</script>\n")
	b.WriteString("<!-- [END] wp_shrtfly_integration AMP -->\n")
	return b.String(), nil
}
