package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ladrtools/proverd/internal/supervise"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires unix signals")
	}
}

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func setupRouter(t *testing.T, base string) (http.Handler, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	sup := supervise.New(dir, supervise.WithPollInterval(20*time.Millisecond))
	r := NewRouter(sup, base, false)
	return r.Handler(), dir
}

func doReq(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func startRun(t *testing.T, h http.Handler, prog, input string) uint64 {
	t.Helper()
	rec := doReq(t, h, http.MethodPost, "/start", startReq{Program: prog, Input: input})
	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp startResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	if resp.ProcessID == 0 {
		t.Fatalf("expected non-zero process id")
	}
	return resp.ProcessID
}

func waitState(t *testing.T, h http.Handler, id uint64, want string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var last map[string]any
	for time.Now().Before(deadline) {
		rec := doReq(t, h, http.MethodGet, fmt.Sprintf("/status/%d", id), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: expected 200, got %d", rec.Code)
		}
		last = nil
		if err := json.Unmarshal(rec.Body.Bytes(), &last); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if last["state"] == want {
			return last
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("state never became %q, last: %v", want, last["state"])
	return nil
}

func TestStartStatusDone(t *testing.T) {
	requireUnix(t)
	h, dir := setupRouter(t, "")
	writeScript(t, dir, "prover9", `cat >/dev/null
echo "Given=1. Generated=2. Kept=3. proofs=1.User_CPU=0.01,"`)

	id := startRun(t, h, "prover9", "formulas(sos). p. end_of_list.")
	st := waitState(t, h, id, "done")
	if st["exit_code"] != float64(0) {
		t.Fatalf("exit_code = %v", st["exit_code"])
	}
	if st["stats"] == nil {
		t.Fatalf("expected stats in status payload")
	}
}

func TestStartRejectsBadRequests(t *testing.T) {
	h, _ := setupRouter(t, "")
	if rec := doReq(t, h, http.MethodPost, "/start", startReq{Program: "gcc", Input: "x"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown program: expected 400, got %d", rec.Code)
	}
	if rec := doReq(t, h, http.MethodPost, "/start", startReq{Program: "prover9"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty input: expected 400, got %d", rec.Code)
	}
	if rec := doReq(t, h, http.MethodPost, "/start", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body: expected 400, got %d", rec.Code)
	}
}

func TestStatusUnknownAndInvalidID(t *testing.T) {
	h, _ := setupRouter(t, "")
	if rec := doReq(t, h, http.MethodGet, "/status/999", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404, got %d", rec.Code)
	}
	if rec := doReq(t, h, http.MethodGet, "/status/abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rec.Code)
	}
}

func TestProcessesList(t *testing.T) {
	requireUnix(t)
	h, dir := setupRouter(t, "")
	writeScript(t, dir, "prooftrans", `cat >/dev/null`)

	a := startRun(t, h, "prooftrans", "x")
	b := startRun(t, h, "prooftrans", "y")

	rec := doReq(t, h, http.MethodGet, "/processes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var ids []uint64
	if err := json.Unmarshal(rec.Body.Bytes(), &ids); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("list = %v, want [%d %d]", ids, a, b)
	}
}

func TestPauseResumeKillFlow(t *testing.T) {
	requireUnix(t)
	h, dir := setupRouter(t, "")
	writeScript(t, dir, "mace4", `cat >/dev/null; sleep 60`)

	id := startRun(t, h, "mace4", "x.")
	waitState(t, h, id, "running")

	if rec := doReq(t, h, http.MethodPost, fmt.Sprintf("/pause/%d", id), nil); rec.Code != http.StatusOK {
		t.Fatalf("pause: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	waitState(t, h, id, "suspended")

	// pausing a suspended run is an invalid action
	if rec := doReq(t, h, http.MethodPost, fmt.Sprintf("/pause/%d", id), nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("double pause: expected 400, got %d", rec.Code)
	}

	if rec := doReq(t, h, http.MethodPost, fmt.Sprintf("/resume/%d", id), nil); rec.Code != http.StatusOK {
		t.Fatalf("resume: expected 200, got %d", rec.Code)
	}
	waitState(t, h, id, "running")

	if rec := doReq(t, h, http.MethodPost, fmt.Sprintf("/kill/%d", id), nil); rec.Code != http.StatusOK {
		t.Fatalf("kill: expected 200, got %d", rec.Code)
	}
	waitState(t, h, id, "killed")
}

func TestKillUnknown(t *testing.T) {
	h, _ := setupRouter(t, "")
	if rec := doReq(t, h, http.MethodPost, "/kill/42", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestExitsTable(t *testing.T) {
	h, _ := setupRouter(t, "/api")
	rec := doReq(t, h, http.MethodGet, "/api/exits/prover9", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("exits: expected 200, got %d", rec.Code)
	}
	var table map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &table); err != nil {
		t.Fatalf("decode exits: %v", err)
	}
	if table["0"] != "Proof" || table["4"] != "Time Limit" {
		t.Fatalf("unexpected exit table: %v", table)
	}
	if rec := doReq(t, h, http.MethodGet, "/api/exits/bogus", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus program: expected 400, got %d", rec.Code)
	}
}

func TestNewServerReportsBindError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sup := supervise.New(t.TempDir())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	if _, err := NewServer(ln.Addr().String(), "", sup, false); err == nil {
		t.Fatalf("expected error binding occupied address")
	}

	srv, err := NewServer("127.0.0.1:0", "", sup, false)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	_ = srv.Close()
}

func TestBasePathRouting(t *testing.T) {
	h, _ := setupRouter(t, "manage/")
	if rec := doReq(t, h, http.MethodGet, "/manage/processes", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 under base path, got %d", rec.Code)
	}
}
