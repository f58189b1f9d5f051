package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cesargomez89/requestline/internal/httpclient"
	"github.com/cesargomez89/requestline/internal/logger"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"prose around", `Sure! Here it is: {"a":1} Hope that helps.`, `{"a":1}`, false},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"nested", `x {"a":{"b":{"c":2}}} y`, `{"a":{"b":{"c":2}}}`, false},
		{"brace in string", `{"a":"}{"} trailing }`, `{"a":"}{"}`, false},
		{"escaped quote", `{"a":"say \"}\" now"}`, `{"a":"say \"}\" now"}`, false},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`, false},
		{"no object", `I don't know that song.`, "", true},
		{"unbalanced", `{"a":{"b":1}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractJSONObject() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantErr     bool
		wantMatched bool
		wantBPM     int
		wantCamelot string
		wantRegular string
	}{
		{
			name:        "numeric fields",
			content:     `{"songName":"Africa","artist":"Toto","bpm":92.6,"key":9,"mode":0}`,
			wantMatched: true, wantBPM: 93, wantCamelot: "8B", wantRegular: "A minor",
		},
		{
			name:        "note names in prose",
			content:     "Here you go:\n```json\n{\"songName\":\"Take On Me\",\"artist\":\"a-ha\",\"bpm\":\"169\",\"key\":\"F#\",\"mode\":\"minor\"}\n```",
			wantMatched: true, wantBPM: 169, wantCamelot: "11B", wantRegular: "F# minor",
		},
		{
			name:        "flat key",
			content:     `{"songName":"x","artist":"y","key":"Db","mode":"major"}`,
			wantMatched: true, wantCamelot: "3A", wantRegular: "C# major",
		},
		{
			name:        "unknown key",
			content:     `{"songName":"x","artist":"y","bpm":100,"key":null,"mode":1}`,
			wantMatched: true, wantBPM: 100,
		},
		{name: "not found", content: `{"found": false}`},
		{name: "missing fields", content: `{"songName":""}`},
		{name: "garbage", content: `no idea`, wantErr: true},
		{name: "malformed object", content: `{"songName": Africa}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseResult(tt.content, "orig song", "orig artist")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResult() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if res.Matched != tt.wantMatched {
				t.Fatalf("Matched = %v, want %v", res.Matched, tt.wantMatched)
			}
			if !res.Matched {
				if res.CorrectedName != "orig song" || res.CorrectedArtist != "orig artist" || res.BPM != nil {
					t.Errorf("Expected fallback, got %+v", res)
				}
				return
			}
			if tt.wantBPM == 0 {
				if res.BPM != nil {
					t.Errorf("Expected nil BPM, got %d", *res.BPM)
				}
			} else if res.BPM == nil || *res.BPM != tt.wantBPM {
				t.Errorf("BPM = %v, want %d", res.BPM, tt.wantBPM)
			}
			if tt.wantCamelot == "" {
				if res.CamelotKey != nil || res.RegularKey != nil {
					t.Errorf("Expected nil keys, got %+v", res)
				}
				return
			}
			if res.CamelotKey == nil || *res.CamelotKey != tt.wantCamelot {
				t.Errorf("CamelotKey = %v, want %s", res.CamelotKey, tt.wantCamelot)
			}
			if res.RegularKey == nil || *res.RegularKey != tt.wantRegular {
				t.Errorf("RegularKey = %v, want %s", res.RegularKey, tt.wantRegular)
			}
		})
	}
}

func TestEnricher_Search(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"songName\":\"Africa\",\"artist\":\"Toto\",\"bpm\":93,\"key\":9,\"mode\":0}"}}]}`))
	}))
	defer server.Close()

	hc := httpclient.NewClient(server.Client(), 0, httpclient.WithRetryBase(time.Millisecond))
	e := NewEnricher(NewClient(hc, server.URL+"/v1/", "key", "test-model"), logger.Discard())

	res, err := e.Search(context.Background(), "africa", "toto")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !res.Matched || res.CorrectedName != "Africa" {
		t.Errorf("Unexpected result %+v", res)
	}
	if got.Model != "test-model" || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("Unexpected request %+v", got)
	}
	if e.Name() != "openai" {
		t.Errorf("Expected provider name openai, got %s", e.Name())
	}
}

func TestEnricher_SearchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	hc := httpclient.NewClient(server.Client(), 0, httpclient.WithRetryBase(time.Millisecond))
	e := NewEnricher(NewClient(hc, server.URL, "key", "m"), logger.Discard())

	if _, err := e.ByID(context.Background(), "ignored", "a", "b"); err == nil {
		t.Error("Expected error on upstream failure")
	}
}
