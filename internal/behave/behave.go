package behave

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/cardiorisk/api"
	"github.com/programme-lv/cardiorisk/internal/gatherer"
	"github.com/programme-lv/cardiorisk/internal/orchestrator"
	"github.com/programme-lv/cardiorisk/internal/vitals"
)

// SpecVitals are the measurements of a scenario. Zero fields are taken
// from the referenced preset, if any.
type SpecVitals struct {
	Preset        string  `toml:"preset"`
	Age           float64 `toml:"age"`
	BloodPressure float64 `toml:"bp"`
	Cholesterol   float64 `toml:"chol"`
	MaxHeartRate  float64 `toml:"heart_rate"`
}

// SpecExpect describes the expected terminal state and risk band
type SpecExpect struct {
	State    string `toml:"state"`
	RiskBand string `toml:"risk_band"`
}

type specSuite struct {
	Description string     `toml:"description"`
	Policy      string     `toml:"policy"`
	Vitals      SpecVitals `toml:"vitals"`
	Expect      SpecExpect `toml:"expect"`
}

type specRoot struct {
	Suites []specSuite `toml:"scenarios"`
	// Optional registry of patients available for reference via preset
	Presets []struct {
		ID            string  `toml:"id"`
		Age           float64 `toml:"age"`
		BloodPressure float64 `toml:"bp"`
		Cholesterol   float64 `toml:"chol"`
		MaxHeartRate  float64 `toml:"heart_rate"`
	} `toml:"presets"`
}

// Case is a runnable scenario converted from TOML
type Case struct {
	Name    string
	Request api.DiagnoseReq
	Policy  vitals.Policy
	Expect  SpecExpect
}

// Parse reads a scenario TOML file and converts it to runnable cases
func Parse(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseBytes(data)
}

func ParseBytes(data []byte) ([]Case, error) {
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	presets := make(map[string]api.Vitals)
	for _, p := range root.Presets {
		if p.ID == "" {
			continue
		}
		presets[p.ID] = api.Vitals{
			Age:           p.Age,
			BloodPressure: p.BloodPressure,
			Cholesterol:   p.Cholesterol,
			MaxHeartRate:  p.MaxHeartRate,
		}
	}

	cases := make([]Case, 0, len(root.Suites))
	for i, suite := range root.Suites {
		name := suite.Description
		if name == "" {
			name = fmt.Sprintf("scenario %d", i+1)
		}

		// start from the preset, then overlay inline values
		var eff api.Vitals
		if suite.Vitals.Preset != "" {
			base, ok := presets[suite.Vitals.Preset]
			if !ok {
				return nil, fmt.Errorf("%s: unknown preset: %s", name, suite.Vitals.Preset)
			}
			eff = base
		}
		if suite.Vitals.Age != 0 {
			eff.Age = suite.Vitals.Age
		}
		if suite.Vitals.BloodPressure != 0 {
			eff.BloodPressure = suite.Vitals.BloodPressure
		}
		if suite.Vitals.Cholesterol != 0 {
			eff.Cholesterol = suite.Vitals.Cholesterol
		}
		if suite.Vitals.MaxHeartRate != 0 {
			eff.MaxHeartRate = suite.Vitals.MaxHeartRate
		}
		if eff.Age == 0 || eff.BloodPressure == 0 || eff.Cholesterol == 0 || eff.MaxHeartRate == 0 {
			return nil, fmt.Errorf("%s: vitals incomplete; require age, bp, chol, heart_rate (preset=%q)", name, suite.Vitals.Preset)
		}

		policy, err := vitals.ParsePolicy(suite.Policy)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		if suite.Expect.State == "" {
			return nil, fmt.Errorf("%s: expect.state is required", name)
		}
		if !orchestrator.State(suite.Expect.State).Terminal() {
			return nil, fmt.Errorf("%s: expect.state %q is not a terminal state", name, suite.Expect.State)
		}
		switch suite.Expect.RiskBand {
		case "", string(orchestrator.High), string(orchestrator.Normal):
		default:
			return nil, fmt.Errorf("%s: unknown risk band %q", name, suite.Expect.RiskBand)
		}

		cases = append(cases, Case{
			Name: name,
			Request: api.DiagnoseReq{
				RequestUuid: uuid.NewString(),
				Vitals:      eff,
				Policy:      string(policy),
			},
			Policy: policy,
			Expect: suite.Expect,
		})
	}

	return cases, nil
}

// Result pairs a case with what the orchestrator produced.
type Result struct {
	Case    Case
	Outcome *orchestrator.Outcome
	// Mismatch is empty when the case passed.
	Mismatch string
}

func (r Result) Passed() bool {
	return r.Mismatch == ""
}

// Verify compares an outcome against the expectation.
func (c Case) Verify(out *orchestrator.Outcome) string {
	var problems []string
	if got := string(out.State()); got != c.Expect.State {
		msg := fmt.Sprintf("state: expected %s, got %s", c.Expect.State, got)
		if out.Err != nil {
			msg += " (" + out.Err.Error() + ")"
		}
		problems = append(problems, msg)
	}
	if c.Expect.RiskBand != "" && string(out.RiskBand) != c.Expect.RiskBand {
		problems = append(problems, fmt.Sprintf("risk band: expected %s, got %q", c.Expect.RiskBand, out.RiskBand))
	}
	return strings.Join(problems, "; ")
}

// Run executes the cases one after another. newGatherer may be nil.
func Run(ctx context.Context, o *orchestrator.Orchestrator, cases []Case, newGatherer func(Case) gatherer.ResultGatherer) []Result {
	res := make([]Result, 0, len(cases))
	for _, c := range cases {
		var g gatherer.ResultGatherer = gatherer.Nop{}
		if newGatherer != nil {
			g = newGatherer(c)
		}
		sample := orchestrator.FromApiVitals(c.Request.Vitals)
		out := o.DiagnoseWith(ctx, c.Request.RequestUuid, sample, c.Policy, g)
		res = append(res, Result{Case: c, Outcome: out, Mismatch: c.Verify(out)})
	}
	return res
}
