package geo

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"
	"time"
)

func TestSampleCountMatchesSphereArea(t *testing.T) {
	for _, r := range []float64{0.5, 1, 2.5, 5, 7, 10, 25} {
		pts, err := SampleRadius(r)
		if err != nil {
			t.Fatalf("radius %v: unexpected error: %v", r, err)
		}
		want := int(math.Round(4 * math.Pi * r * r))
		if len(pts) != want {
			t.Fatalf("radius %v: expected %d points, got %d", r, want, len(pts))
		}
	}
}

func TestSampleRejectsNonPositiveRadius(t *testing.T) {
	for _, r := range []float64{0, -1, 0.1} {
		if _, err := SampleRadius(r); !errors.Is(err, ErrEmptySample) {
			t.Fatalf("radius %v: expected ErrEmptySample, got %v", r, err)
		}
	}
}

func TestFibonacciSphereBoundsAndDeterminism(t *testing.T) {
	a, err := FibonacciSphere(500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := FibonacciSphere(500)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between runs: %v vs %v", i, a[i], b[i])
		}
		if a[i].Lat < -math.Pi/2 || a[i].Lat > math.Pi/2 {
			t.Fatalf("latitude out of range: %v", a[i].Lat)
		}
		if a[i].Lon < 0 || a[i].Lon >= 2*math.Pi {
			t.Fatalf("longitude out of range: %v", a[i].Lon)
		}
	}
}

func TestDegreesKeepsPrimeMeridian(t *testing.T) {
	cases := []struct {
		lat, lon         float64
		wantLat, wantLon float64
	}{
		{0, 0, 0, 0},
		{math.Pi / 4, math.Pi / 2, 45, 90},
		{0, math.Pi, 0, -180},
		{-math.Pi / 2, 3 * math.Pi / 2, -90, -90},
		{0, WrapLon(-0.1), 0, -0.1 * 180 / math.Pi},
	}
	for _, c := range cases {
		lat, lon := Point{Lat: c.lat, Lon: c.lon}.Degrees()
		if math.Abs(lat-c.wantLat) > 1e-9 || math.Abs(lon-c.wantLon) > 1e-9 {
			t.Errorf("(%v, %v) -> (%v, %v), want (%v, %v)", c.lat, c.lon, lat, lon, c.wantLat, c.wantLon)
		}
		if lon < -180 || lon >= 180 {
			t.Errorf("longitude %v outside [-180, 180)", lon)
		}
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	cases := []struct {
		a, b Point
		want float64
	}{
		{Point{0, 0}, Point{0, math.Pi / 2}, math.Pi / 2},
		{Point{math.Pi / 2, 0}, Point{-math.Pi / 2, 0}, math.Pi},
		{Point{0.3, 1.2}, Point{0.3, 1.2}, 0},
	}
	for _, tc := range cases {
		if got := Haversine(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Haversine(%v,%v)=%v want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMoveTravelsRequestedDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		p := Point{Lat: (rng.Float64() - 0.5) * 2.8, Lon: rng.Float64() * 2 * math.Pi}
		d := rng.Float64() * 1.5
		q := Move(p, rng.Float64()*2*math.Pi, d)
		if got := Haversine(p, q); math.Abs(got-d) > 1e-7 {
			t.Fatalf("moved %v, measured %v", d, got)
		}
		if q.Lon < 0 || q.Lon >= 2*math.Pi {
			t.Fatalf("longitude not wrapped: %v", q.Lon)
		}
	}
}

func TestCartesianRoundTrip(t *testing.T) {
	p := Point{Lat: -0.7, Lon: 4.1}
	q := FromCartesian(p.Cartesian())
	if math.Abs(p.Lat-q.Lat) > 1e-12 || math.Abs(p.Lon-q.Lon) > 1e-12 {
		t.Fatalf("round trip mismatch: %v vs %v", p, q)
	}
}

func TestCompassLabels(t *testing.T) {
	cases := map[float64]string{0: "N", math.Pi / 2: "E", math.Pi: "S", -math.Pi / 2: "W", math.Pi / 4: "NE"}
	for theta, want := range cases {
		if got := Compass(theta); got != want {
			t.Fatalf("Compass(%v)=%s want %s", theta, got, want)
		}
	}
	north := Bearing(Point{0, 1}, Point{0.5, 1})
	if Compass(north) != "N" {
		t.Fatalf("expected bearing to the pole to be N, got %s", Compass(north))
	}
}

func bruteNearest(pts []Point, q Point, k int) []int {
	ids := make([]int, len(pts))
	for i := range ids {
		ids[i] = i
	}
	qv := q.Cartesian()
	sort.SliceStable(ids, func(a, b int) bool {
		da, db := dist2(qv, pts[ids[a]].Cartesian()), dist2(qv, pts[ids[b]].Cartesian())
		if da != db {
			return da < db
		}
		return ids[a] < ids[b]
	})
	return ids[:k]
}

func TestIndexNearestMatchesBruteForce(t *testing.T) {
	pts, _ := FibonacciSphere(400)
	ix := NewIndex(pts)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		q := Point{Lat: (rng.Float64() - 0.5) * math.Pi, Lon: rng.Float64() * 2 * math.Pi}
		got := ix.Nearest(q, 3)
		want := bruteNearest(pts, q, 3)
		for j := range want {
			if got[j].Index != want[j] {
				t.Fatalf("query %v: neighbour %d = %d want %d", q, j, got[j].Index, want[j])
			}
			if d := Haversine(q, pts[want[j]]); math.Abs(d-got[j].Dist) > 1e-9 {
				t.Fatalf("distance mismatch %v vs %v", got[j].Dist, d)
			}
		}
	}
}

func TestIndexToleratesCoincidentQuery(t *testing.T) {
	pts, _ := FibonacciSphere(50)
	ix := NewIndex(pts)
	nb := ix.Nearest(pts[10], 2)
	if len(nb) != 2 || nb[0].Index != 10 || nb[0].Dist != 0 {
		t.Fatalf("expected self match first, got %+v", nb)
	}
	if got := ix.Nearest(pts[0], 100); len(got) != 50 {
		t.Fatalf("expected k clamped to index size, got %d", len(got))
	}
}

func TestIndexWithinMatchesBruteForceAndIsSymmetric(t *testing.T) {
	pts, _ := FibonacciSphere(300)
	ix := NewIndex(pts)
	r := 0.25
	sets := make([]map[int]bool, len(pts))
	for i, p := range pts {
		got := ix.Within(p, r)
		sets[i] = map[int]bool{}
		for _, j := range got {
			sets[i][j] = true
		}
		for j, o := range pts {
			in := Haversine(p, o) <= r-1e-9
			if in && !sets[i][j] {
				t.Fatalf("point %d missing neighbour %d", i, j)
			}
		}
		if !sets[i][i] {
			t.Fatalf("radius query should include the coincident point %d", i)
		}
	}
	for i := range sets {
		for j := range sets[i] {
			if !sets[j][i] {
				t.Fatalf("asymmetric: %d sees %d but not the reverse", i, j)
			}
		}
	}
	if got := ix.Within(pts[0], math.Pi); len(got) != len(pts) {
		t.Fatalf("radius π should cover the sphere, got %d", len(got))
	}
}

func TestLRUEvictsOldestAndExpires(t *testing.T) {
	c := NewLRU(2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if v, ok := c.Get("c"); !ok || v != "3" {
		t.Fatalf("expected c=3, got %q %v", v, ok)
	}

	short := NewLRU(4, time.Nanosecond)
	short.Set("x", "y")
	time.Sleep(time.Millisecond)
	if _, ok := short.Get("x"); ok {
		t.Fatal("expected entry to expire")
	}
}
