package service

import (
	"context"
	"encoding/json"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sandboxConfig(url string) config.SandboxConfig {
	return config.SandboxConfig{URL: url, RunTimeoutMs: 5000, CompileTimeoutMs: 10000, CaseTimeoutSec: 15}
}

func TestExecute_RequestShape(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"run": map[string]interface{}{"stdout": "42\n", "stderr": "", "code": 0},
		})
	}))
	defer srv.Close()

	svc := NewSandboxService(sandboxConfig(srv.URL))
	result, err := svc.Execute(context.Background(), "python", "print(42)", "")
	require.NoError(t, err)

	assert.Equal(t, "python", captured["language"])
	assert.Equal(t, "3.10.0", captured["version"])
	assert.EqualValues(t, 5000, captured["run_timeout"])
	assert.EqualValues(t, 10000, captured["compile_timeout"])

	files := captured["files"].([]interface{})
	file := files[0].(map[string]interface{})
	assert.Equal(t, "main.py", file["name"])

	assert.False(t, result.Errored)
	assert.Equal(t, "42\n", result.Stdout)
}

func TestExecute_JavaFileName(t *testing.T) {
	var fileName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		fileName = req["files"].([]interface{})[0].(map[string]interface{})["name"].(string)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"run": map[string]interface{}{"stdout": "", "stderr": "", "code": 0},
		})
	}))
	defer srv.Close()

	svc := NewSandboxService(sandboxConfig(srv.URL))
	_, err := svc.Execute(context.Background(), "java", "public class Main {}", "")
	require.NoError(t, err)
	assert.Equal(t, "Main.java", fileName)
}

func TestExecute_UnsupportedLanguage(t *testing.T) {
	svc := NewSandboxService(sandboxConfig("http://127.0.0.1:0"))
	_, err := svc.Execute(context.Background(), "brainfuck", "+", "")
	assert.ErrorIs(t, err, util.ErrUnsupportedLanguage)
}

func TestExecute_CompileFailureMarksErrored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"run":     map[string]interface{}{"stdout": "", "stderr": "", "code": 1},
			"compile": map[string]interface{}{"stdout": "", "stderr": "error: expected ';'", "code": 1},
		})
	}))
	defer srv.Close()

	svc := NewSandboxService(sandboxConfig(srv.URL))
	result, err := svc.Execute(context.Background(), "cpp", "int main() {", "")
	require.NoError(t, err)
	assert.True(t, result.Errored)
	assert.Contains(t, result.Stderr, "expected ';'")
}

func TestExecute_NonZeroExitWithoutStderrNotErrored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"run": map[string]interface{}{"stdout": "partial", "stderr": "", "code": 1},
		})
	}))
	defer srv.Close()

	svc := NewSandboxService(sandboxConfig(srv.URL))
	result, err := svc.Execute(context.Background(), "go", "package main", "")
	require.NoError(t, err)
	assert.False(t, result.Errored)
}

func TestExecute_SandboxDown(t *testing.T) {
	svc := NewSandboxService(sandboxConfig("http://127.0.0.1:1"))
	_, err := svc.Execute(context.Background(), "python", "print(1)", "")
	assert.ErrorIs(t, err, util.ErrExternalServiceUnavailable)
}
