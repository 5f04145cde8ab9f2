// Standalone load generator for a running susrolld instance. Not part
// of the daemon build; run with `go run ./tests/loadtest`.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 20
	testDuration = 10 * time.Second
	numAccounts  = 10
)

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== SusRollsDaemon Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Accounts: %d\n\n", numWorkers, testDuration, numAccounts)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Creating accounts ---")
	for i := 0; i < numAccounts; i++ {
		doJSONPost("/accounts", map[string]any{"username": fmt.Sprintf("loadtest-%d", i)})
	}

	fmt.Println("\n--- Phase 2: Mixed read traffic ---")
	results := runPhase(testDuration, func(rng *rand.Rand) result {
		switch rng.Intn(4) {
		case 0:
			return doGet("/accounts")
		case 1:
			return doGet(fmt.Sprintf("/collection?user=loadtest-%d", rng.Intn(numAccounts)))
		case 2:
			return doGet("/session")
		default:
			return doGet("/health")
		}
	})

	report(results)
}

func runPhase(d time.Duration, op func(*rand.Rand) result) []result {
	var mu sync.Mutex
	var results []result
	deadline := time.Now().Add(d)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for time.Now().Before(deadline) {
				r := op(rng)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}
		}(int64(w))
	}
	wg.Wait()
	return results
}

func doGet(path string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	latency := time.Since(start)
	if err != nil {
		return result{endpoint: path, latency: latency, err: true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint: path, status: resp.StatusCode, latency: latency}
}

func doJSONPost(path string, payload any) result {
	body, _ := json.Marshal(payload)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+path, "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		return result{endpoint: path, latency: latency, err: true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint: path, status: resp.StatusCode, latency: latency}
}

func report(results []result) {
	byEndpoint := make(map[string]*stats)
	for _, r := range results {
		s, ok := byEndpoint[r.endpoint]
		if !ok {
			s = &stats{}
			byEndpoint[r.endpoint] = s
		}
		s.count++
		if r.err || r.status >= 500 {
			s.errors++
		}
		s.latencies = append(s.latencies, r.latency)
	}

	endpoints := make([]string, 0, len(byEndpoint))
	for ep := range byEndpoint {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n%-40s %10s %8s %10s %10s\n", "endpoint", "requests", "errors", "p50", "p99")
	for _, ep := range endpoints {
		s := byEndpoint[ep]
		sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
		fmt.Printf("%-40s %10d %8d %10s %10s\n",
			ep, s.count, s.errors,
			percentile(s.latencies, 0.50), percentile(s.latencies, 0.99))
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
