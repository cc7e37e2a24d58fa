package checkov

import (
	"strings"
	"testing"
)

func TestParseSingleReportObject(t *testing.T) {
	payload := []byte(`{
  "check_type":"terraform",
  "results":{
    "passed_checks":[{"check_id":"CKV_AWS_1"}],
    "failed_checks":[
      {
        "check_id":"CKV_AWS_20",
        "check_name":"Ensure the S3 bucket does not allow READ permissions to everyone",
        "file_path":"/deploy/s3.tf",
        "file_line_range":[12,29],
        "resource":"aws_s3_bucket.assets",
        "severity":"HIGH"
      },
      {
        "check_id":"CKV_AWS_18",
        "check_name":"Ensure the S3 bucket has access logging enabled",
        "file_path":"/deploy/s3.tf",
        "file_line_range":[12,29],
        "resource":"aws_s3_bucket.assets",
        "severity":null
      }
    ]
  },
  "summary":{"passed":1,"failed":2,"skipped":0}
}`)
	findings, err := Parse("checkov.json", payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected two findings, got %d", len(findings))
	}
	if findings[0].Severity != "high" {
		t.Fatalf("unexpected severity: %s", findings[0].Severity)
	}
	if findings[0].Location != "/deploy/s3.tf:12" {
		t.Fatalf("unexpected location: %s", findings[0].Location)
	}
	if findings[1].Severity != "unknown" {
		t.Fatalf("null severity should map to unknown, got %s", findings[1].Severity)
	}
	if findings[0].CheckType != "terraform" {
		t.Fatalf("unexpected check type: %s", findings[0].CheckType)
	}
}

func TestParseMultiFrameworkArray(t *testing.T) {
	payload := []byte(`[
  {
    "check_type":"terraform",
    "results":{"failed_checks":[{"check_id":"CKV_AWS_20","check_name":"s3 read","file_path":"/s3.tf","file_line_range":[1,4],"resource":"aws_s3_bucket.b","severity":"MEDIUM"}]},
    "summary":{"failed":1}
  },
  {
    "check_type":"dockerfile",
    "results":{"failed_checks":[{"check_id":"CKV_DOCKER_2","check_name":"healthcheck","file_path":"/Dockerfile","file_line_range":[1,1],"resource":"Dockerfile","severity":null}]},
    "summary":{"failed":1}
  }
]`)
	findings, err := Parse("checkov.json", payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected two findings, got %d", len(findings))
	}
	if findings[0].CheckType != "terraform" || findings[1].CheckType != "dockerfile" {
		t.Fatalf("check types not preserved: %s, %s", findings[0].CheckType, findings[1].CheckType)
	}
	if findings[1].SourceIndex != 1 {
		t.Fatalf("expected contiguous indexes across reports, got %d", findings[1].SourceIndex)
	}
}

func TestParsePassingReportHasNoFindings(t *testing.T) {
	payload := []byte(`{"check_type":"terraform","results":{"failed_checks":[]},"summary":{"failed":0}}`)
	findings, err := Parse("checkov.json", payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %d", len(findings))
	}
}

func TestParseRejectsMissingResults(t *testing.T) {
	payload := []byte(`{"check_type":"terraform","summary":{"failed":0}}`)
	if _, err := Parse("checkov.json", payload); err == nil {
		t.Fatal("expected envelope error")
	} else if !strings.Contains(err.Error(), "missing results object") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRejectsArrayWithBadElement(t *testing.T) {
	payload := []byte(`[{"check_type":"terraform","summary":{}}]`)
	if _, err := Parse("checkov.json", payload); err == nil {
		t.Fatal("expected envelope error")
	}
}
