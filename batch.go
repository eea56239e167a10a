package orbital

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// Requests to the library are embarrassingly parallel: each computation
// reads shared constants and writes its own result. The fan-out helpers
// below dispatch them over a pool of NumCPU workers, one CPU token per
// in-flight request, and restore order by index.

func batchLogger() kitlog.Logger {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	return kitlog.With(klog, "subsys", "batch")
}

// PredictAllPasses predicts the passes of every satellite of a set over the
// same observer, in parallel. results[i] holds the passes of sats[i]. On
// cancellation the completed slots are returned along with the context
// error; the first per-satellite error wins otherwise.
func PredictAllPasses(ctx context.Context, sats []Satellite, observer ObserverLocation, from time.Time, days int, minElevation float64) ([][]SatellitePass, error) {
	if len(sats) == 0 {
		return nil, InvalidParameterError{Name: "satellites", Value: 0}
	}
	numCPUs := runtime.NumCPU()
	if numCPUs > len(sats) {
		numCPUs = len(sats)
	}
	batchLogger().Log("level", "info", "action", "fanout", "requests", len(sats), "cpus", numCPUs)
	// Predict only reads the predictor's fields, so one predictor serves
	// all workers.
	p := NewPassPredictor()
	p.MinElevation = minElevation
	results := make([][]SatellitePass, len(sats))
	errs := make([]error, len(sats))
	cpuChan := make(chan bool, numCPUs)
	var wg sync.WaitGroup
	for i := range sats {
		wg.Add(1)
		cpuChan <- true
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = p.Predict(ctx, sats[i], observer, from, days)
			<-cpuChan
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// AllLaunchWindows computes upcoming launch windows toward several target
// bodies in parallel. results[i] holds the windows toward targets[i].
func AllLaunchWindows(targets []CelestialBody, from time.Time, count int) ([][]LaunchWindow, error) {
	if len(targets) == 0 {
		return nil, InvalidParameterError{Name: "targets", Value: 0}
	}
	numCPUs := runtime.NumCPU()
	if numCPUs > len(targets) {
		numCPUs = len(targets)
	}
	batchLogger().Log("level", "info", "action", "fanout", "requests", len(targets), "cpus", numCPUs)
	results := make([][]LaunchWindow, len(targets))
	errs := make([]error, len(targets))
	cpuChan := make(chan bool, numCPUs)
	var wg sync.WaitGroup
	for i := range targets {
		wg.Add(1)
		cpuChan <- true
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = LaunchWindows(targets[i], from, count)
			<-cpuChan
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
