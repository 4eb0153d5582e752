package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/aknopov/ballcube"
	"github.com/stretchr/testify/assert"
)

func post(engine http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Add("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestLogVolume(t *testing.T) {
	assertT := assert.New(t)

	engine := newEngine(ballcube.New())

	rec := post(engine, `{"dim":2,"scale":"0.5"}`)
	assertT.Equal(http.StatusOK, rec.Code)
	var resp VolumeResponse
	assertT.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	// log(π)
	assertT.True(strings.HasPrefix(resp.LogVolume, "1.1447298858494"), resp.LogVolume)

	rec = post(engine, `{"dim":3,"scale":"4"}`)
	assertT.Equal(http.StatusOK, rec.Code)
	assertT.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	// 3 log(2/2)
	logVol, err := strconv.ParseFloat(resp.LogVolume, 64)
	assertT.NoError(err)
	assertT.InDelta(0, logVol, 1e-100)
}

func TestBadRequests(t *testing.T) {
	assertT := assert.New(t)

	engine := newEngine(ballcube.New())

	for _, body := range []string{
		`{"dim":2,"scale":"x"}`,
		`{"dim":2,"scale":"inf"}`,
		`{"dim":3,"scale":"NaN"}`,
		`{"dim":0,"scale":"1.5"}`,
		`{"dim":2,"scale":"-1"}`,
		`{"dim":"two"}`,
		`not json`,
	} {
		rec := post(engine, body)
		assertT.Equal(http.StatusBadRequest, rec.Code, "For", body)

		var resp ErrorResponse
		assertT.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		assertT.NotEmpty(resp.Error)
	}
}

func TestStopRequest(t *testing.T) {
	assertT := assert.New(t)

	engine := newEngine(ballcube.New())

	rec := post(engine, `{"dim":-1}`)
	assertT.Equal(http.StatusOK, rec.Code)
	assertT.JSONEq(`{"logVolume":"done"}`, rec.Body.String())
	assertT.Len(stopChan, 1)
	<-stopChan

	req := httptest.NewRequest(http.MethodHead, "/", nil)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assertT.Equal(http.StatusOK, rec.Code)
}
