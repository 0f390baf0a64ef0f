package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "batch") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		percent float64
		want    bool
	}{
		{0, true},
		{10, false},
		{24.9, false},
		{25, true},
		{40, false},
		{75, true},
		{100, true},
		{150, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog(step.percent, "batch"); got != step.want {
			t.Fatalf("ShouldLog(%v) = %v, want %v", step.percent, got, step.want)
		}
	}
}

func TestProgressSamplerPhaseChangeResetsBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(50, "scan") {
		t.Fatal("first phase should log")
	}
	if s.ShouldLog(50, "scan") {
		t.Fatal("same phase and bucket should not log")
	}
	if !s.ShouldLog(10, "convert") {
		t.Fatal("phase change should log")
	}
	if s.ShouldLog(15, "convert") {
		t.Fatal("same bucket after phase change should not log")
	}
}

func TestProgressSamplerUnknownPercent(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(-1, "scan") {
		t.Fatal("phase change should log even with unknown percent")
	}
	if s.ShouldLog(-1, "scan") {
		t.Fatal("unknown percent without phase change should not log")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(90, "convert")
	s.Reset()
	if !s.ShouldLog(90, "convert") {
		t.Fatal("expected log after reset")
	}
}
