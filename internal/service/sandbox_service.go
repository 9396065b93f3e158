package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/util"
	"io"
	"net/http"
	"time"
)

// 各语言在沙箱中固定使用的运行时版本
var languageVersions = map[string]string{
	"python":     "3.10.0",
	"javascript": "18.15.0",
	"typescript": "5.0.3",
	"java":       "15.0.2",
	"cpp":        "10.2.0",
	"c":          "10.2.0",
	"go":         "1.16.2",
	"rust":       "1.50.0",
}

var languageExtensions = map[string]string{
	"python":     "py",
	"javascript": "js",
	"typescript": "ts",
	"java":       "java",
	"cpp":        "cpp",
	"c":          "c",
	"go":         "go",
	"rust":       "rs",
}

// SandboxService Piston 兼容执行沙箱的客户端
type SandboxService struct {
	config config.SandboxConfig
	client *http.Client
}

func NewSandboxService(cfg config.SandboxConfig) *SandboxService {
	return &SandboxService{
		config: cfg,
		client: &http.Client{Timeout: time.Duration(cfg.CaseTimeoutSec) * time.Second},
	}
}

// SupportedLanguages 返回可执行语言列表
func (s *SandboxService) SupportedLanguages() []string {
	langs := make([]string, 0, len(languageVersions))
	for l := range languageVersions {
		langs = append(langs, l)
	}
	return langs
}

type executeRequest struct {
	Language       string        `json:"language"`
	Version        string        `json:"version"`
	Files          []executeFile `json:"files"`
	Stdin          string        `json:"stdin"`
	RunTimeout     int           `json:"run_timeout"`
	CompileTimeout int           `json:"compile_timeout"`
}

type executeFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type stageResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Output string `json:"output"`
	Code   int    `json:"code"`
}

type executeResponse struct {
	Run     stageResult  `json:"run"`
	Compile *stageResult `json:"compile,omitempty"`
}

// ExecutionResult 一次沙箱执行的结果
type ExecutionResult struct {
	Stdout  string
	Stderr  string
	Errored bool
}

// Execute 在沙箱里运行一段代码。执行失败（编译错误或带 stderr 的非零退出）
// 通过 Errored 上报，用例判定由调用方负责
func (s *SandboxService) Execute(ctx context.Context, language, code, stdin string) (*ExecutionResult, error) {
	version, ok := languageVersions[language]
	if !ok {
		return nil, util.ErrUnsupportedLanguage
	}

	fileName := "main." + languageExtensions[language]
	if language == "java" {
		// Java 要求文件名与 public class 一致
		fileName = "Main.java"
	}

	reqBody := executeRequest{
		Language:       language,
		Version:        version,
		Files:          []executeFile{{Name: fileName, Content: code}},
		Stdin:          stdin,
		RunTimeout:     s.config.RunTimeoutMs,
		CompileTimeout: s.config.CompileTimeoutMs,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.URL+"/execute", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, util.ErrExternalServiceUnavailable
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sandbox error (status %d): %s", resp.StatusCode, string(body))
	}

	var result executeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	errored := result.Run.Code != 0 && result.Run.Stderr != ""
	stderr := result.Run.Stderr
	if result.Compile != nil && result.Compile.Code != 0 {
		errored = true
		if result.Compile.Stderr != "" {
			stderr = result.Compile.Stderr
		} else {
			stderr = result.Compile.Output
		}
	}

	return &ExecutionResult{
		Stdout:  result.Run.Stdout,
		Stderr:  stderr,
		Errored: errored,
	}, nil
}
