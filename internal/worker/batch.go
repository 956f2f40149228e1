package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/osintlab/ecoprofiler/internal/model"
)

// Profiler defines the interface for profiling a region
type Profiler interface {
	ProfileRegion(ctx context.Context, region string) (*model.Profile, error)
}

// ProfileJob represents a region profiling job
type ProfileJob struct {
	Region   string
	Profiler Profiler
}

// Execute executes the profiling job
func (j *ProfileJob) Execute(ctx context.Context) Result {
	profile, err := j.Profiler.ProfileRegion(ctx, j.Region)
	if err != nil {
		return &ProfileResult{
			Region:  j.Region,
			Profile: nil,
			Error:   err,
		}
	}
	return &ProfileResult{
		Region:  j.Region,
		Profile: profile,
		Error:   nil,
	}
}

// ProfileResult represents the result of a profiling job
type ProfileResult struct {
	Region  string
	Profile *model.Profile
	Error   error
}

// GetError returns the error from the profiling result
func (r *ProfileResult) GetError() error {
	return r.Error
}

// BatchProcessor profiles multiple regions concurrently
type BatchProcessor struct {
	profiler    Profiler
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(profiler Profiler, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		profiler:    profiler,
		concurrency: concurrency,
	}
}

// ProcessRegions profiles multiple regions concurrently
func (b *BatchProcessor) ProcessRegions(ctx context.Context, regions []string) []*ProfileResult {
	if len(regions) == 0 {
		return []*ProfileResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, region := range regions {
		job := &ProfileJob{
			Region:   region,
			Profiler: b.profiler,
		}
		pool.Submit(job)
	}

	results := pool.Wait()

	profileResults := make([]*ProfileResult, len(results))
	for i, result := range results {
		profileResults[i] = result.(*ProfileResult)
	}

	return profileResults
}

// ProcessFile reads regions from a file and profiles them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ProfileResult, error) {
	regions, err := ReadRegionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}

	return b.ProcessRegions(ctx, regions), nil
}

// ReadRegionsFromFile reads region names from a file (one per line)
func ReadRegionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var regions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := strings.ToLower(line)
		if !seen[key] {
			seen[key] = true
			regions = append(regions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return regions, nil
}
