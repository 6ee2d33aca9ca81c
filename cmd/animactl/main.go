package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

func main() {
	server := flag.String("server", "http://localhost:3210", "Anima server URL")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	c := &client{base: *server, http: &http.Client{Timeout: 150 * time.Second}}

	switch args[0] {
	case "status":
		c.showStatus()
	case "vitals":
		c.showVitals()
	case "activities":
		c.showActivities()
	case "skills":
		c.showSkills()
	case "recent":
		c.showRecent(args[1:])
	case "slots":
		c.showSlots(args[1:])
	case "pulse":
		c.pulse()
	case "suggest":
		c.suggest(strings.Join(args[1:], " "))
	case "search":
		c.search(strings.Join(args[1:], " "))
	default:
		printError("unknown command: %s", args[0])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `animactl — poke at a running Anima daemon

Usage: animactl [-server URL] <command> [args]

Commands:
  status            energy budget and per-activity admission state
  vitals            lifetime counters: ticks, runs, streaks
  activities        registered activity specs
  skills            capability readiness
  recent [n]        last n memory records (default 10)
  slots [key]       key/value slots, or one slot by key
  pulse             force an immediate cycle
  suggest <topic>   queue a research topic for the next web research
  search <query>    semantic search over remembered texts`)
}

type client struct {
	base string
	http *http.Client
}

func (c *client) get(path string, out interface{}) bool {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		printError("request failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		printError("server error (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		printError("failed to parse response: %v", err)
		return false
	}
	return true
}

func (c *client) post(path string, payload, out interface{}) bool {
	body, _ := json.Marshal(payload)
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(body))
	if err != nil {
		printError("request failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		printError("server error (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		printError("failed to parse response: %v", err)
		return false
	}
	return true
}

func (c *client) showStatus() {
	var status struct {
		Being     string `json:"being"`
		Time      string `json:"time"`
		Records   int    `json:"records"`
		Scheduler struct {
			Energy     float64 `json:"energy"`
			MaxEnergy  float64 `json:"max_energy"`
			RegenPerMn float64 `json:"regen_per_minute"`
			Activities []struct {
				Spec struct {
					Name           string        `json:"name"`
					EnergyCost     float64       `json:"energy_cost"`
					Cooldown       time.Duration `json:"cooldown"`
					RequiredSkills []string      `json:"required_skills"`
				} `json:"spec"`
				LastRun  *time.Time `json:"last_run"`
				Runs     int        `json:"runs"`
				Eligible bool       `json:"eligible"`
			} `json:"activities"`
		} `json:"scheduler"`
	}
	if !c.get("/api/being/status", &status) {
		return
	}

	fmt.Printf("%s @ %s\n", status.Being, status.Time)
	fmt.Printf("Energy: %.2f / %.2f (+%.2f/min) | %d records\n",
		status.Scheduler.Energy, status.Scheduler.MaxEnergy,
		status.Scheduler.RegenPerMn, status.Records)
	fmt.Println("Activities:")
	for _, a := range status.Scheduler.Activities {
		icon := "\033[31m✗\033[0m"
		if a.Eligible {
			icon = "\033[32m✓\033[0m"
		}
		last := "never"
		if a.LastRun != nil {
			last = a.LastRun.Local().Format("15:04:05")
		}
		fmt.Printf("  %s %-20s cost %.1f cooldown %-8s runs %-3d last %s\n",
			icon, a.Spec.Name, a.Spec.EnergyCost, a.Spec.Cooldown, a.Runs, last)
	}
}

func (c *client) showVitals() {
	var vitals struct {
		StartedAt     time.Time `json:"started_at"`
		Ticks         int       `json:"ticks"`
		IdleTicks     int       `json:"idle_ticks"`
		Runs          int       `json:"runs"`
		Successes     int       `json:"successes"`
		Failures      int       `json:"failures"`
		CurrentStreak int       `json:"current_streak"`
		LongestStreak int       `json:"longest_streak"`
		LowestEnergy  float64   `json:"lowest_energy"`
		Activities    map[string]struct {
			Runs      int    `json:"runs"`
			Successes int    `json:"successes"`
			Failures  int    `json:"failures"`
			LastError string `json:"last_error"`
		} `json:"activities"`
	}
	if !c.get("/api/being/vitals", &vitals) {
		return
	}

	fmt.Printf("Alive since %s (%s)\n",
		vitals.StartedAt.Local().Format("2006-01-02 15:04"),
		time.Since(vitals.StartedAt).Round(time.Minute))
	fmt.Printf("Ticks: %d (%d idle) | Runs: %d (%d ok, %d failed)\n",
		vitals.Ticks, vitals.IdleTicks, vitals.Runs, vitals.Successes, vitals.Failures)
	fmt.Printf("Streak: %d (best %d) | Lowest energy: %.2f\n",
		vitals.CurrentStreak, vitals.LongestStreak, vitals.LowestEnergy)
	for name, av := range vitals.Activities {
		fmt.Printf("  %-20s %d runs, %d ok, %d failed", name, av.Runs, av.Successes, av.Failures)
		if av.LastError != "" {
			fmt.Printf(" \033[31m(%s)\033[0m", av.LastError)
		}
		fmt.Println()
	}
}

func (c *client) showActivities() {
	var specs []struct {
		Name           string        `json:"name"`
		EnergyCost     float64       `json:"energy_cost"`
		Cooldown       time.Duration `json:"cooldown"`
		RequiredSkills []string      `json:"required_skills"`
	}
	if !c.get("/api/activities", &specs) {
		return
	}
	for _, s := range specs {
		fmt.Printf("  %-20s cost %.1f cooldown %-8s skills: %s\n",
			s.Name, s.EnergyCost, s.Cooldown, strings.Join(s.RequiredSkills, ", "))
	}
}

func (c *client) showSkills() {
	var skills map[string]bool
	if !c.get("/api/skills", &skills) {
		return
	}
	for name, ready := range skills {
		icon := "\033[31m✗\033[0m"
		if ready {
			icon = "\033[32m✓\033[0m"
		}
		fmt.Printf("  %s %s\n", icon, name)
	}
}

func (c *client) showRecent(args []string) {
	limit := 10
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			limit = n
		}
	}

	var records []struct {
		ActivityType string    `json:"activity_type"`
		Timestamp    time.Time `json:"timestamp"`
		Success      bool      `json:"success"`
		Error        string    `json:"error"`
	}
	if !c.get("/api/memory/recent?limit="+strconv.Itoa(limit), &records) {
		return
	}
	if len(records) == 0 {
		fmt.Println("No records yet.")
		return
	}
	for _, r := range records {
		icon := "\033[31m✗\033[0m"
		if r.Success {
			icon = "\033[32m✓\033[0m"
		}
		fmt.Printf("  %s %s %-20s", icon, r.Timestamp.Local().Format("15:04:05"), r.ActivityType)
		if r.Error != "" {
			fmt.Printf(" %s", r.Error)
		}
		fmt.Println()
	}
}

func (c *client) showSlots(args []string) {
	if len(args) > 0 {
		var slot struct {
			Key   string          `json:"key"`
			Value json.RawMessage `json:"value"`
		}
		if !c.get("/api/memory/slots/"+url.PathEscape(args[0]), &slot) {
			return
		}
		printJSON(slot.Value)
		return
	}

	var slots map[string]json.RawMessage
	if !c.get("/api/memory/slots", &slots) {
		return
	}
	if len(slots) == 0 {
		fmt.Println("No slots yet.")
		return
	}
	for key, value := range slots {
		preview := string(value)
		if len(preview) > 100 {
			preview = preview[:100] + "…"
		}
		fmt.Printf("  %-24s %s\n", key, preview)
	}
}

func (c *client) pulse() {
	var resp struct {
		Ran      bool   `json:"ran"`
		Activity string `json:"activity"`
		Time     string `json:"time"`
	}
	if !c.post("/api/being/pulse", map[string]string{}, &resp) {
		return
	}
	if resp.Ran {
		fmt.Printf("\033[32m✓\033[0m ran %s\n", resp.Activity)
	} else {
		fmt.Println("Nothing eligible this cycle.")
	}
}

func (c *client) suggest(topic string) {
	if strings.TrimSpace(topic) == "" {
		printError("usage: animactl suggest <topic>")
		os.Exit(2)
	}
	var resp struct {
		Status string `json:"status"`
		Topic  string `json:"topic"`
	}
	if !c.post("/api/suggest", map[string]string{"topic": topic}, &resp) {
		return
	}
	fmt.Printf("\033[32m✓\033[0m queued research topic: %s\n", resp.Topic)
}

func (c *client) search(query string) {
	if strings.TrimSpace(query) == "" {
		printError("usage: animactl search <query>")
		os.Exit(2)
	}
	var hits []struct {
		Score    float32 `json:"score"`
		Content  string  `json:"content"`
		Activity string  `json:"activity"`
	}
	if !c.get("/api/memory/search?q="+url.QueryEscape(query), &hits) {
		return
	}
	if len(hits) == 0 {
		fmt.Println("Nothing remembered about that.")
		return
	}
	for _, h := range hits {
		content := strings.Join(strings.Fields(h.Content), " ")
		if len(content) > 160 {
			content = content[:160] + "…"
		}
		fmt.Printf("  %.2f \033[36m[%s]\033[0m %s\n", h.Score, h.Activity, content)
	}
}

func printJSON(raw json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(buf.String())
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\033[31m"+format+"\033[0m\n", args...)
}
