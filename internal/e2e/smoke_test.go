//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL string

func TestMain(m *testing.M) {
	baseURL = os.Getenv("ANIMA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3210"
	}

	// Wait for server readiness (up to 30s)
	ready := false
	for i := 0; i < 30; i++ {
		resp, err := http.Get(baseURL + "/api/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				ready = true
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	if !ready {
		fmt.Fprintf(os.Stderr, "server at %s not ready after 30s\n", baseURL)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func apiGet(t *testing.T, path string, out interface{}) {
	t.Helper()
	resp, err := http.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d: %s", path, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("GET %s: unmarshal: %v (body: %s)", path, err, string(raw))
	}
}

func apiPost(t *testing.T, path string, payload, out interface{}) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	client := &http.Client{Timeout: 150 * time.Second}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		t.Fatalf("POST %s: status %d: %s", path, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("POST %s: unmarshal: %v (body: %s)", path, err, string(raw))
	}
}

func TestHealth(t *testing.T) {
	var health struct {
		Status string `json:"status"`
		Being  string `json:"being"`
	}
	apiGet(t, "/api/health", &health)
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
	if health.Being == "" {
		t.Error("expected a being name")
	}
}

func TestBeingStatus(t *testing.T) {
	var status struct {
		Being     string `json:"being"`
		Scheduler struct {
			Energy     float64 `json:"energy"`
			MaxEnergy  float64 `json:"max_energy"`
			Activities []struct {
				Spec struct {
					Name string `json:"name"`
				} `json:"spec"`
			} `json:"activities"`
		} `json:"scheduler"`
	}
	apiGet(t, "/api/being/status", &status)

	if status.Scheduler.Energy < 0 || status.Scheduler.Energy > status.Scheduler.MaxEnergy {
		t.Errorf("energy %v outside [0, %v]", status.Scheduler.Energy, status.Scheduler.MaxEnergy)
	}
	if len(status.Scheduler.Activities) == 0 {
		t.Error("no activities registered")
	}
	t.Logf("energy %.2f/%.2f, %d activities",
		status.Scheduler.Energy, status.Scheduler.MaxEnergy, len(status.Scheduler.Activities))
}

func TestBeingVitals(t *testing.T) {
	var vitals struct {
		StartedAt time.Time `json:"started_at"`
		Ticks     int       `json:"ticks"`
		Runs      int       `json:"runs"`
	}
	apiGet(t, "/api/being/vitals", &vitals)
	if vitals.StartedAt.IsZero() {
		t.Error("started_at missing")
	}
	t.Logf("ticks=%d runs=%d", vitals.Ticks, vitals.Runs)
}

func TestActivitiesRegistered(t *testing.T) {
	var specs []struct {
		Name       string  `json:"name"`
		EnergyCost float64 `json:"energy_cost"`
	}
	apiGet(t, "/api/activities", &specs)
	if len(specs) == 0 {
		t.Fatal("no activities registered")
	}
	for _, s := range specs {
		if s.Name == "" {
			t.Error("activity with empty name")
		}
		if s.EnergyCost < 0 {
			t.Errorf("%s: negative energy cost %v", s.Name, s.EnergyCost)
		}
	}
}

func TestSkillsLedger(t *testing.T) {
	var skills map[string]bool
	apiGet(t, "/api/skills", &skills)
	if len(skills) == 0 {
		t.Fatal("no skills registered")
	}
	t.Logf("skills: %v", skills)
}

func TestSuggestWritesSlot(t *testing.T) {
	topic := fmt.Sprintf("smoke test topic %d", time.Now().UnixNano())

	var suggestResp struct {
		Status string `json:"status"`
		Topic  string `json:"topic"`
	}
	apiPost(t, "/api/suggest", map[string]string{"topic": topic}, &suggestResp)
	if suggestResp.Topic != topic {
		t.Errorf("echoed topic = %q, want %q", suggestResp.Topic, topic)
	}

	var slot struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	apiGet(t, "/api/memory/slots/research_topic", &slot)
	if slot.Value != topic {
		t.Errorf("slot value = %q, want %q", slot.Value, topic)
	}
}

func TestPulse(t *testing.T) {
	var resp struct {
		Ran      bool   `json:"ran"`
		Activity string `json:"activity"`
	}
	apiPost(t, "/api/being/pulse", map[string]string{}, &resp)
	// An exhausted or skill-starved being legitimately idles; the pulse
	// just has to answer.
	if resp.Ran && resp.Activity == "" {
		t.Error("ran without naming the activity")
	}
	t.Logf("ran=%v activity=%q", resp.Ran, resp.Activity)
}

func TestRecentRecordsWellFormed(t *testing.T) {
	var records []struct {
		ID           string    `json:"id"`
		ActivityType string    `json:"activity_type"`
		Timestamp    time.Time `json:"timestamp"`
	}
	apiGet(t, "/api/memory/recent?limit=5", &records)
	if len(records) > 5 {
		t.Errorf("got %d records, limit was 5", len(records))
	}
	for _, r := range records {
		if r.ID == "" || r.ActivityType == "" || r.Timestamp.IsZero() {
			t.Errorf("malformed record: %+v", r)
		}
	}
}
