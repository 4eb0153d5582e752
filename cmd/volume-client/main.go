package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aknopov/ballcube"
	"github.com/aknopov/ballcube/runner"
	"github.com/aknopov/fancylogger"
)

const (
	Port      = 8080
	Host      = "localhost"
	WaitSleep = 1 * time.Second
)

type VolumeRequest struct {
	Dim   int    `json:"dim"`
	Scale string `json:"scale"`
}

type VolumeResponse struct {
	LogVolume string `json:"logVolume"`
	Error     string `json:"error"`
}

var (
	logger  = fancylogger.NewLogger(os.Stdout, fancylogger.LiteFg)
	quitReq = ballcube.AssertNoErr(json.Marshal(VolumeRequest{Dim: -1}))
)

func main() {
	dim := flag.Int("d", 100, "dimension")
	scale := flag.String("s", "1.5", "scale")
	concur := flag.Int("c", 10, "concurrent tasks")
	totalTests := flag.Int("n", 500, "total tasks")
	printRaw := flag.Bool("r", false, "print raw durations")
	flag.Parse()

	requestUrl := fmt.Sprintf("http://%s:%d", Host, Port)
	volReq := VolumeRequest{*dim, *scale}
	jsonString := ballcube.AssertNoErr(json.Marshal(volReq))
	task := func() error { return sendOneRequest(requestUrl, jsonString) }

	if !waitServer(requestUrl, 5*time.Minute) {
		os.Exit(1)
	}

	startTime := time.Now()
	stats := runner.Run([]runner.Task{task}, *totalTests, *concur)
	elapsedTime := time.Since(startTime)

	//nolint:errcheck
	sendOneRequest(requestUrl, quitReq)

	logger.Info().Msgf("Test finished for dim=%d, scale=%s:", volReq.Dim, volReq.Scale)
	logger.Info().Int("  num tests", stats[0].Count).Send()
	logger.Info().Int("  num concur", *concur).Send()
	logger.Info().Int("  num failures", stats[0].Fails).Send()
	logger.Info().Dur("  duration", elapsedTime).Send()
	logger.Info().Dur("  max", stats[0].MaxTime).Send()
	logger.Info().Dur("  med", stats[0].MedTime).Send()
	logger.Info().Dur("  min", stats[0].MinTime).Send()
	logger.Info().Dur("  avg", stats[0].AvgTime).Send()
	logger.Info().Dur("  stdev", stats[0].StdDev).Send()
	if len(stats[0].Errors) > 0 {
		logger.Error().Msgf("First failure: %s", stats[0].Errors[0])
	}

	if *printRaw {
		fmt.Printf("        Raw test durations (ms):\n")
		for i, v := range stats[0].Values {
			fmt.Printf("%4d\t%.4f\n", i+1, float64(v)/float64(time.Millisecond))
		}
	}
}

func sendOneRequest(url string, jsonString []byte) error {
	bodyReader := bytes.NewReader(jsonString)
	req, err := http.NewRequest(http.MethodPost, url, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	volRaw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	var volResp VolumeResponse
	err = json.Unmarshal(volRaw, &volResp)
	if err != nil {
		return err
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", res.StatusCode, volResp.Error)
	}
	return nil
}

// Polls the endpoint until it responds or `timeout` expires
func waitServer(url string, timeout time.Duration) bool {
	logger.Debug().Msg("Waiting for server ...")
	count := timeout / WaitSleep
	req, _ := http.NewRequest(http.MethodHead, url, nil)

	for range count {
		resp, err := http.DefaultClient.Do(req)
		if err == nil && resp != nil {
			resp.Body.Close()
			logger.Debug().Msg("Endpoint is open now")
			return true
		}
		time.Sleep(WaitSleep)
	}
	logger.Error().Str("url", url).Dur("wait", timeout).Msg("Connection timed-out")
	return false
}
