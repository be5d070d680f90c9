// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/voting-server/auth"
	"github.com/danielhkuo/voting-server/testutil"
)

func TestAdminLogin(t *testing.T) {
	handler := NewAdminHandler(auth.NewCredentials(testutil.GetTestConfig()))

	tests := []struct {
		name            string
		form            map[string]string
		expectedStatus  int
		expectedMessage string
	}{
		{"valid credentials", map[string]string{"username": "admin", "password": "admin123"}, http.StatusOK, "Admin login successful"},
		{"wrong password", map[string]string{"username": "admin", "password": "nope"}, http.StatusUnauthorized, "Invalid credentials"},
		{"missing password", map[string]string{"username": "admin"}, http.StatusUnauthorized, "Invalid credentials"},
		{"empty form", map[string]string{}, http.StatusUnauthorized, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Login(w, testutil.MakeRequest("POST", "/api/admin/login", tt.form))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			testutil.AssertMessage(t, w, tt.expectedStatus == http.StatusOK, tt.expectedMessage)
		})
	}
}
