package queue

import (
	"context"
	"testing"
)

func TestProcessIngestMessageRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{
			name: "invalid json",
			msg:  "{not json",
		},
		{
			name: "neither path nor s3 key",
			msg:  `{"message":"Document ingestion requested","docId":"osd-101"}`,
		},
		{
			name: "s3 key without object storage",
			msg:  `{"message":"Document ingestion requested","s3Key":"papers/osd-101.pdf"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ProcessIngestMessage(context.Background(), nil, nil, tc.msg)
			if err == nil {
				t.Fatalf("expected error for message %q, got nil", tc.msg)
			}
		})
	}
}

func TestProcessScrapeMessageRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{
			name: "invalid json",
			msg:  "{not json",
		},
		{
			name: "missing url",
			msg:  `{"message":"Scrape requested"}`,
		},
		{
			name: "relative url",
			msg:  `{"message":"Scrape requested","url":"/papers/osd-101"}`,
		},
		{
			name: "url without host",
			msg:  `{"message":"Scrape requested","url":"https://"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ProcessScrapeMessage(context.Background(), nil, nil, tc.msg)
			if err == nil {
				t.Fatalf("expected error for message %q, got nil", tc.msg)
			}
		})
	}
}
