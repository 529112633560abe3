// Package advisor is the Gemini-backed narrative layer. It turns a
// company's registry snapshot into a written intelligence report or a
// risk assessment with cited figures. The advisor is optional: without
// an API key every operation reports ErrNotConfigured and the rest of
// the system keeps working.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"fintel/internal/config"
	"fintel/internal/errs"
	"fintel/internal/finance"
	"fintel/internal/logging"
	"fintel/internal/targetare"
)

// Model defaults, applied when the configuration leaves them blank.
const (
	DefaultReasoningModel = "gemini-2.5-flash"
	DefaultFastModel      = "gemini-2.5-flash-lite"
	DefaultMaxTokens      = 8000
	DefaultTemperature    = 0.5
)

// ErrNotConfigured is returned when no GenAI API key is present.
var ErrNotConfigured = errors.New("ai advisor not configured: set genai.api_key")

// Bundle is the registry snapshot the advisor reasons over: the six
// company facets fetched in parallel by the caller. Missing facets stay
// zero and are simply absent from the prompt.
type Bundle struct {
	TaxID          string
	Profile        *targetare.CompanyProfile
	Financials     []finance.Record
	Phones         []string
	Emails         []string
	Administrators []targetare.Administrator
	Websites       []string
}

// promptContext renders the bundle as indented JSON for the prompt,
// omitting empty facets.
func (b Bundle) promptContext() string {
	payload := map[string]any{"tax_id": b.TaxID}
	if b.Profile != nil {
		payload["profile"] = b.Profile
	}
	if len(b.Financials) > 0 {
		payload["financial_history"] = b.Financials
	}
	if len(b.Phones) > 0 {
		payload["phones"] = b.Phones
	}
	if len(b.Emails) > 0 {
		payload["emails"] = b.Emails
	}
	if len(b.Administrators) > 0 {
		payload["administrators"] = b.Administrators
	}
	if len(b.Websites) > 0 {
		payload["websites"] = b.Websites
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("{%q: %q}", "tax_id", b.TaxID)
	}
	return string(raw)
}

// Report is the model-written business intelligence report.
type Report struct {
	Headline           string    `json:"headline"`
	ExecutiveSummary   string    `json:"executive_summary"`
	FinancialNarrative string    `json:"financial_narrative"`
	Strengths          []string  `json:"strengths"`
	Concerns           []string  `json:"concerns"`
	Recommendation     string    `json:"recommendation"`
	Model              string    `json:"model"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// RiskFactor is one identified risk with the figure that evidences it.
type RiskFactor struct {
	Factor   string `json:"factor"`
	Severity string `json:"severity"`
	Evidence string `json:"evidence"`
}

// Assessment is the model-written risk assessment.
type Assessment struct {
	RiskRating  string       `json:"risk_rating"`
	RiskScore   int          `json:"risk_score"`
	RiskFactors []RiskFactor `json:"risk_factors"`
	Mitigants   []string     `json:"mitigants"`
	Summary     string       `json:"summary"`
	Model       string       `json:"model"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Advisor calls the Gemini API. The zero (nil) advisor is valid and
// reports ErrNotConfigured from every operation.
type Advisor struct {
	client *genai.Client
	cfg    config.GenAIConfig
}

// New builds the advisor, or (nil, nil) when no API key is configured.
func New(ctx context.Context, cfg config.GenAIConfig) (*Advisor, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Advisor{client: client, cfg: cfg}, nil
}

// Configured reports whether advisory calls can be made.
func (a *Advisor) Configured() bool {
	return a != nil
}

// ComprehensiveReport writes a full intelligence report from the
// bundle, using the reasoning model.
func (a *Advisor) ComprehensiveReport(ctx context.Context, b Bundle) (*Report, error) {
	if a == nil {
		return nil, ErrNotConfigured
	}

	model := a.reasoningModel()
	text, err := a.generate(ctx, model, reportPrompt(b))
	if err != nil {
		return nil, err
	}

	var report Report
	if err := decodeModelJSON(model, text, &report); err != nil {
		return nil, err
	}
	report.Model = model
	report.GeneratedAt = time.Now().UTC()

	logging.Advisor("Generated comprehensive report for %s with %s", b.TaxID, model)
	return &report, nil
}

// RiskAssessment rates the company's risk from the bundle, using the
// fast model.
func (a *Advisor) RiskAssessment(ctx context.Context, b Bundle) (*Assessment, error) {
	if a == nil {
		return nil, ErrNotConfigured
	}

	model := a.fastModel()
	text, err := a.generate(ctx, model, riskPrompt(b))
	if err != nil {
		return nil, err
	}

	var assessment Assessment
	if err := decodeModelJSON(model, text, &assessment); err != nil {
		return nil, err
	}
	assessment.Model = model
	assessment.GeneratedAt = time.Now().UTC()

	logging.Advisor("Generated risk assessment for %s with %s", b.TaxID, model)
	return &assessment, nil
}

func reportPrompt(b Bundle) string {
	return `You are a Romanian business intelligence analyst. Write a report on
the company below using only the data provided. Be concrete: quote the
figures each statement rests on.

COMPANY DATA:
` + b.promptContext() + `

Return JSON with keys: headline, executive_summary, financial_narrative,
strengths (array of strings), concerns (array of strings), recommendation.
Respond with the JSON object only.`
}

func riskPrompt(b Bundle) string {
	return `You are a credit risk analyst. Assess the risk of the Romanian
company below using only the data provided. Every risk factor must cite
a concrete figure from the data as evidence.

COMPANY DATA:
` + b.promptContext() + `

Return JSON with keys: risk_rating (one of: low, moderate, elevated, high),
risk_score (integer 0-100, higher is riskier), risk_factors (array of
objects with keys factor, severity, evidence), mitigants (array of
strings), summary.
Respond with the JSON object only.`
}

func (a *Advisor) generate(ctx context.Context, model, prompt string) (string, error) {
	if d := a.cfg.RequestTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	timer := logging.StartTimer(logging.CategoryAdvisor, "generate")
	defer timer.Stop()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := a.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(a.temperature()),
		MaxOutputTokens: a.maxTokens(),
	})
	if err != nil {
		return "", &errs.RequestFailedError{Endpoint: "genai:" + model, Cause: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &errs.RequestFailedError{
			Endpoint: "genai:" + model,
			Cause:    errors.New("empty model response"),
		}
	}
	return text, nil
}

func (a *Advisor) reasoningModel() string {
	if a.cfg.ReasoningModel != "" {
		return a.cfg.ReasoningModel
	}
	return DefaultReasoningModel
}

func (a *Advisor) fastModel() string {
	if a.cfg.FastModel != "" {
		return a.cfg.FastModel
	}
	return DefaultFastModel
}

func (a *Advisor) maxTokens() int32 {
	if a.cfg.MaxTokens > 0 {
		return a.cfg.MaxTokens
	}
	return DefaultMaxTokens
}

func (a *Advisor) temperature() float32 {
	if a.cfg.Temperature > 0 {
		return a.cfg.Temperature
	}
	return DefaultTemperature
}
