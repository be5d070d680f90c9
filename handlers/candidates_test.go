// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/voting-server/models"
	"github.com/danielhkuo/voting-server/testutil"
)

func TestAddCandidate(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	handler := NewCandidateHandler(st, testutil.GetTestConfig())

	t.Run("valid candidate", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.AddCandidate(w, testutil.MakeRequest("POST", "/api/candidate/add", map[string]string{
			"name": "Alice", "party": "Green", "age": "45", "gender": "F", "sectionId": "3",
		}))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.AddCandidateResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.Success || resp.Message != "Candidate added successfully" {
			t.Errorf("Unexpected response: %+v", resp)
		}
		if resp.CandidateID != 1 {
			t.Errorf("Expected candidateId 1, got %d", resp.CandidateID)
		}

		got := st.Candidates(3)
		if len(got) != 1 || got[0].Name != "Alice" || got[0].Age != 45 {
			t.Errorf("Unexpected stored candidates: %+v", got)
		}
	})

	t.Run("bad section id is ignored", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.AddCandidate(w, testutil.MakeRequest("POST", "/api/candidate/add", map[string]string{
			"name": "Bob", "party": "Blue", "age": "50", "gender": "M", "sectionId": "abc",
		}))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.AddCandidateResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.CandidateID != 2 {
			t.Errorf("Expected candidateId 2, got %d", resp.CandidateID)
		}
		for _, c := range st.Candidates(0) {
			if c.ID == 2 && c.SectionID != 0 {
				t.Errorf("Expected unscoped candidate, got sectionId %d", c.SectionID)
			}
		}
	})

	errorCases := []struct {
		name            string
		form            map[string]string
		expectedMessage string
	}{
		{"missing party", map[string]string{"name": "C", "age": "40", "gender": "F"}, "Name, party, age, and gender required"},
		{"empty form", map[string]string{}, "Name, party, age, and gender required"},
		{"bad age", map[string]string{"name": "C", "party": "P", "age": "x", "gender": "F"}, "Invalid age format"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.AddCandidate(w, testutil.MakeRequest("POST", "/api/candidate/add", tc.form))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
			testutil.AssertMessage(t, w, false, tc.expectedMessage)
		})
	}
}

func TestListCandidates(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	handler := NewCandidateHandler(st, testutil.GetTestConfig())

	sid := testutil.CreateTestSection(t, st, "Round 1")
	testutil.AddTestCandidate(t, st, "Alice", "PartyA", sid)
	testutil.AddTestCandidate(t, st, "Bob", "PartyB", 0)

	tests := []struct {
		target        string
		expectedNames []string
	}{
		{"/api/candidates", []string{"Alice", "Bob"}},
		{"/api/candidates?sectionId=1", []string{"Alice"}},
		{"/api/candidates?sectionId=7", []string{}},
		{"/api/candidates?sectionId=0", []string{"Alice", "Bob"}},
		{"/api/candidates?sectionId=-4", []string{"Alice", "Bob"}},
		{"/api/candidates?sectionId=abc", []string{"Alice", "Bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ListCandidates(w, testutil.MakeRequest("GET", tt.target, nil))
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.CandidatesResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.Candidates) != len(tt.expectedNames) {
				t.Fatalf("Expected %d candidates, got %d", len(tt.expectedNames), len(resp.Candidates))
			}
			for i, name := range tt.expectedNames {
				if resp.Candidates[i].Name != name {
					t.Errorf("Candidate %d: expected %s, got %s", i, name, resp.Candidates[i].Name)
				}
			}
		})
	}
}

func TestDeleteCandidate(t *testing.T) {
	st, _ := testutil.SetupTestStore(t)
	handler := NewCandidateHandler(st, testutil.GetTestConfig())

	voted := testutil.AddTestCandidate(t, st, "Alice", "PartyA", 0)
	testutil.AddTestCandidate(t, st, "Bob", "PartyB", 0)
	testutil.AddTestVoter(t, st, "V1", "Ann")
	testutil.CastTestVote(t, st, "V1", voted, 0)

	tests := []struct {
		name            string
		form            map[string]string
		expectedStatus  int
		expectedMessage string
	}{
		{"missing id", map[string]string{}, http.StatusBadRequest, "Candidate ID required"},
		{"non-numeric id", map[string]string{"candidateId": "two"}, http.StatusBadRequest, "Invalid candidate ID"},
		{"unknown id", map[string]string{"candidateId": "99"}, http.StatusNotFound, "Candidate not found"},
		{"has votes", map[string]string{"candidateId": "1"}, http.StatusBadRequest, "Cannot delete candidate who has received votes"},
		{"valid delete", map[string]string{"candidateId": "2"}, http.StatusOK, "Candidate deleted successfully"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.DeleteCandidate(w, testutil.MakeRequest("POST", "/api/candidate/delete", tt.form))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			testutil.AssertMessage(t, w, tt.expectedStatus == http.StatusOK, tt.expectedMessage)
		})
	}

	if n := len(st.Candidates(0)); n != 1 {
		t.Errorf("Expected 1 remaining candidate, got %d", n)
	}
}
