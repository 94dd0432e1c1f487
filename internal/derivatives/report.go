package derivatives

// StepResult records the outcome of one derivative generation step.
type StepResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Report summarizes a processing run for one asset. Success is true only
// when every enabled step completed; individual step failures are recorded
// rather than aborting the run.
type Report struct {
	AssetID   int64        `json:"asset_id"`
	MediaType string       `json:"media_type"`
	Steps     []StepResult `json:"steps"`
	Success   bool         `json:"success"`
	Reason    string       `json:"reason,omitempty"`
}

func (r *Report) addStep(name string, path string, err error) {
	step := StepResult{Name: name, Success: err == nil, Path: path}
	if err != nil {
		step.Error = err.Error()
		step.Path = ""
		r.Success = false
	}
	r.Steps = append(r.Steps, step)
}

// Step returns the named step result and whether it exists.
func (r *Report) Step(name string) (StepResult, bool) {
	for _, step := range r.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return StepResult{}, false
}
