// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package validation

import (
	"strings"
	"testing"
)

type watchRequest struct {
	VideoID        string `validate:"required,max=64"`
	SecondsWatched int    `validate:"min=0,max=86400"`
	Kind           string `validate:"required,watchkind"`
}

type historyRequest struct {
	Date string `validate:"required,utcdate"`
}

func TestValidateStructPasses(t *testing.T) {
	req := watchRequest{VideoID: "dQw4w9WgXcQ", SecondsWatched: 212, Kind: "scheduled"}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStructFieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		req       watchRequest
		wantField string
		wantTag   string
	}{
		{
			name:      "missing video id",
			req:       watchRequest{SecondsWatched: 10, Kind: "scheduled"},
			wantField: "VideoID",
			wantTag:   "required",
		},
		{
			name:      "negative seconds",
			req:       watchRequest{VideoID: "v", SecondsWatched: -1, Kind: "scheduled"},
			wantField: "SecondsWatched",
			wantTag:   "min",
		},
		{
			name:      "unknown kind",
			req:       watchRequest{VideoID: "v", SecondsWatched: 10, Kind: "bonus"},
			wantField: "Kind",
			wantTag:   "watchkind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestWatchKindRule(t *testing.T) {
	for _, kind := range []string{"scheduled", "manual", "grace"} {
		req := watchRequest{VideoID: "v", SecondsWatched: 0, Kind: kind}
		if err := ValidateStruct(&req); err != nil {
			t.Errorf("kind %q rejected: %v", kind, err)
		}
	}
	req := watchRequest{VideoID: "v", SecondsWatched: 0, Kind: "Scheduled"}
	if err := ValidateStruct(&req); err == nil {
		t.Error("kind names are case-sensitive wire values; uppercase accepted")
	}
}

func TestUTCDateRule(t *testing.T) {
	if err := ValidateStruct(&historyRequest{Date: "2025-01-03"}); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}
	for _, bad := range []string{"2025-1-3", "03/01/2025", "2025-01-03T00:00:00Z", "not-a-date"} {
		if err := ValidateStruct(&historyRequest{Date: bad}); err == nil {
			t.Errorf("date %q accepted, want rejection", bad)
		}
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	err := ValidateStruct(&watchRequest{VideoID: "v", SecondsWatched: 10, Kind: "bonus"})
	if err == nil {
		t.Fatal("want validation error")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "scheduled, manual, grace") {
		t.Errorf("Message = %q, want the allowed kinds listed", apiErr.Message)
	}
	if apiErr.Details["field"] != "Kind" {
		t.Errorf("Details field = %v, want Kind", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	err := ValidateStruct(&watchRequest{SecondsWatched: -1, Kind: ""})
	if err == nil {
		t.Fatal("want validation error")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(err.Errors()), err)
	}
	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details fields has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("got %d field entries, want 3", len(fields))
	}
}

func TestGetValidatorIsSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator returned different instances")
	}
}
