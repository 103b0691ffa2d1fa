package plans

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadDefaultPlan reads the system default plan from a JSON file. It is
// loaded once at startup and served to accounts that never uploaded a
// plan of their own.
func LoadDefaultPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read default plan: %w", err)
	}

	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("unmarshal default plan: %w", err)
	}

	if err := NormalizeAndValidate(&plan); err != nil {
		return nil, fmt.Errorf("default plan %s: %w", path, err)
	}

	// the default plan belongs to no account
	plan.AccountID = nil
	plan.Active = true

	return &plan, nil
}
