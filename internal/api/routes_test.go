package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"neurosphere/internal/geo"
	"neurosphere/internal/logger"
	"neurosphere/internal/neurosphere"
	"neurosphere/internal/params"
	"neurosphere/internal/planet"
)

func testSphere(t *testing.T) (*neurosphere.Sphere, []int) {
	return seededSphere(t, 11)
}

func seededSphere(t *testing.T, seed int64) (*neurosphere.Sphere, []int) {
	t.Helper()
	g := params.Default()
	g.Radius = 4
	g.Seed = &seed
	g.Workers = 2
	g.Tectonics.BigNumber = 3
	g.Tectonics.SmallNumber = 1
	sp := neurosphere.New(nil)
	p := planet.New(g)
	if _, err := sp.AddWorld(context.Background(), p); err != nil {
		t.Fatalf("add world: %v", err)
	}
	return sp, p.LocationIDs()
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))
	return rr
}

func TestDescribeServesAndCaches(t *testing.T) {
	sp, ids := testSphere(t)
	h := BuildRoutes(sp, nil, Options{})
	url := "/describe?location=" + itoa(ids[0])
	rr := get(t, h, url)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var res describeResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Description, "Biome: ") {
		t.Fatalf("description %q", res.Description)
	}
	again := get(t, h, url)
	if again.Body.String() != rr.Body.String() {
		t.Fatal("cached response differs")
	}
}

func TestDescribeCacheIsScopedToWorldContent(t *testing.T) {
	shared := geo.NewLRU(64, time.Hour)
	for _, seed := range []int64{11, 12} {
		sp, ids := seededSphere(t, seed)
		if ids[0] != 0 {
			t.Fatalf("seed %d: first location %d, want 0", seed, ids[0])
		}
		want, err := sp.Describe(0)
		if err != nil {
			t.Fatal(err)
		}
		// 新进程复用同一缓存命名空间，同 id 的地点属于另一个世界
		h := BuildRoutes(sp, nil, Options{Local: shared})
		var res describeResult
		if err := json.Unmarshal(get(t, h, "/describe?location=0").Body.Bytes(), &res); err != nil {
			t.Fatal(err)
		}
		if res.Description != want {
			t.Fatalf("seed %d: served %q, want %q", seed, res.Description, want)
		}
	}
	if shared.Len() != 2 {
		t.Fatalf("shared cache holds %d entries, want one per world", shared.Len())
	}
}

func TestDescribeKeyFollowsFingerprint(t *testing.T) {
	a, _ := seededSphere(t, 11)
	b, _ := seededSphere(t, 11)
	c, _ := seededSphere(t, 12)
	ka, err := describeKey(a, 0)
	if err != nil {
		t.Fatal(err)
	}
	kb, _ := describeKey(b, 0)
	kc, _ := describeKey(c, 0)
	if ka != kb {
		t.Fatalf("identical worlds produced keys %q and %q", ka, kb)
	}
	if ka == kc {
		t.Fatalf("different seeds share key %q", ka)
	}
	if !strings.HasPrefix(ka, "describe:0:") || !strings.HasSuffix(ka, ":0") {
		t.Fatalf("unexpected key shape %q", ka)
	}
	if _, err := describeKey(a, 999999); err == nil {
		t.Fatal("unknown location should not produce a key")
	}
}

func TestDescribeFallsBackWhenRedisFails(t *testing.T) {
	prev := logger.L()
	t.Cleanup(func() { logger.Use(prev) })
	var buf bytes.Buffer
	logger.Use(logger.New(logger.Config{Level: "debug", Out: &buf}))

	rc := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rc.Close() })
	sp, ids := testSphere(t)
	want, err := sp.Describe(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	h := BuildRoutes(sp, rc, Options{})
	rr := get(t, h, "/describe?location="+itoa(ids[0]))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var res describeResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Description != want {
		t.Fatalf("served %q, want %q", res.Description, want)
	}
	if out := buf.String(); !strings.Contains(out, "redis_get_fail") {
		t.Fatalf("redis read error not logged: %q", out)
	}
}

func TestDescribeErrors(t *testing.T) {
	sp, _ := testSphere(t)
	h := BuildRoutes(sp, nil, Options{})
	cases := []struct {
		url  string
		code int
	}{
		{"/describe", http.StatusBadRequest},
		{"/describe?location=x", http.StatusBadRequest},
		{"/describe?location=999999", http.StatusNotFound},
		{"/reachable?location=0", http.StatusBadRequest},
		{"/reachable?location=0&distance=-1", http.StatusBadRequest},
		{"/stats?world=7", http.StatusNotFound},
	}
	for _, c := range cases {
		if rr := get(t, h, c.url); rr.Code != c.code {
			t.Errorf("%s: status %d, want %d", c.url, rr.Code, c.code)
		}
	}
}

func TestReachableAndStats(t *testing.T) {
	sp, ids := testSphere(t)
	h := BuildRoutes(sp, nil, Options{})
	rr := get(t, h, "/reachable?location="+itoa(ids[0])+"&distance=0.6")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var res reachableResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Reachable) != len(res.Neighbours) {
		t.Fatalf("reachable %d vs neighbours %d", len(res.Reachable), len(res.Neighbours))
	}
	for _, id := range res.Reachable {
		if id == ids[0] {
			t.Fatal("origin listed as reachable")
		}
	}

	rr = get(t, h, "/stats?world=0")
	if rr.Code != http.StatusOK {
		t.Fatalf("stats status %d", rr.Code)
	}
	var st planet.Statistics
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Points != len(ids) || st.Seed != 11 {
		t.Fatalf("stats %+v", st)
	}

	rr = get(t, h, "/worlds")
	if !strings.Contains(rr.Body.String(), `"type":"planet"`) {
		t.Fatalf("worlds %s", rr.Body.String())
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
