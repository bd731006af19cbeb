package model

import "testing"

func TestScopeValidation(t *testing.T) {
	tests := map[string]struct {
		scope Scope
		valid bool
	}{
		"user valid":    {scope: ScopeUser, valid: true},
		"project valid": {scope: ScopeProject, valid: true},
		"empty invalid": {scope: "", valid: false},
		"unknown":       {scope: "system", valid: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.scope.IsValid(); got != tt.valid {
				t.Errorf("Scope(%q).IsValid() = %v, want %v", tt.scope, got, tt.valid)
			}
		})
	}
}

func TestParseScope(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    Scope
		wantErr bool
	}{
		"user exact":      {input: "user", want: ScopeUser},
		"project exact":   {input: "project", want: ScopeProject},
		"global alias":    {input: "global", want: ScopeUser},
		"repo alias":      {input: "repo", want: ScopeProject},
		"uppercase":       {input: "PROJECT", want: ScopeProject},
		"with whitespace": {input: "  user ", want: ScopeUser},
		"unknown":         {input: "admin", wantErr: true},
		"empty":           {input: "", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseScope(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScope(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseScope(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestKindPlural(t *testing.T) {
	if got := KindAgent.Plural(); got != "agents" {
		t.Errorf("KindAgent.Plural() = %q", got)
	}
	if got := KindSkill.Plural(); got != "skills" {
		t.Errorf("KindSkill.Plural() = %q", got)
	}
	if Kind("tool").IsValid() {
		t.Error("unknown kind should be invalid")
	}
}
