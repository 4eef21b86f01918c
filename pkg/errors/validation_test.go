package errors

import (
	"testing"
)

func TestValidateComponentName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "ScrewdriverHolder_GEN", false},
		{"with dash", "holder-v2", false},
		{"with dot", "holder.wall", false},

		{"empty", "", true},
		{"too long", "a" + string(make([]byte, 200)), true},
		{"starts with digit", "2holder", true},
		{"path separator", "holders/main", true},
		{"spaces", "my holder", true},
		{"control char", "hold\x01er", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComponentName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateComponentName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !IsInput(err) {
				t.Errorf("ValidateComponentName(%q) returned non-input error: %v", tt.input, err)
			}
		})
	}
}

func TestValidateOutputBase(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/holder", false},
		{"absolute", "/tmp/holder", false},
		{"filename only", "holder", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"traversal", "../holder", true},
		{"null byte", "hold\x00er", true},
		{"newline", "hold\ner", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputBase(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputBase(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMountStyle(t *testing.T) {
	for _, s := range []string{"none", "counterbore", "countersink"} {
		if err := ValidateMountStyle(s); err != nil {
			t.Errorf("ValidateMountStyle(%q) = %v, want nil", s, err)
		}
	}

	err := ValidateMountStyle("keyhole")
	if !Is(err, ErrCodeParamRange) {
		t.Fatalf("ValidateMountStyle(keyhole) = %v, want %s", err, ErrCodeParamRange)
	}
	if got := GetDetails(err)["value"]; got != "keyhole" {
		t.Errorf("details[value] = %v, want keyhole", got)
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidCatalog,
		ErrCodeInvalidParams,
		ErrCodeNoTools,
		ErrCodeFileNotFound,
		ErrCodeInvalidTool,
		ErrCodeDuplicateCell,
		ErrCodeSpacing,
		ErrCodeMountOffset,
		ErrCodeBaseThickness,
		ErrCodeParamRange,
		ErrCodeNotFound,
		ErrCodeBackend,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
