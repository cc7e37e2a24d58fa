package trivy

import (
	"strings"
	"testing"
)

func TestParseFlattensResultKinds(t *testing.T) {
	payload := []byte(`{
  "SchemaVersion":2,
  "ArtifactName":"registry.local/payment-api:1.4.2",
  "Results":[
    {
      "Target":"registry.local/payment-api:1.4.2 (debian 12.4)",
      "Vulnerabilities":[
        {
          "VulnerabilityID":"CVE-2024-0727",
          "PkgName":"openssl",
          "InstalledVersion":"3.0.11",
          "Severity":"HIGH",
          "Title":"openssl denial of service",
          "CVSS":{"nvd":{"V3Score":5.5},"redhat":{"V3Score":7.5}}
        }
      ]
    },
    {
      "Target":"app/Dockerfile",
      "Misconfigurations":[
        {"ID":"DS002","AVDID":"AVD-DS-0002","Title":"root user","Severity":"CRITICAL"}
      ],
      "Secrets":[
        {"RuleID":"aws-access-key-id","Category":"AWS","Severity":"CRITICAL","Title":"AWS Access Key ID"}
      ]
    }
  ]
}`)
	findings, err := Parse("trivy.json", payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 3 {
		t.Fatalf("expected three findings, got %d", len(findings))
	}

	vuln := findings[0]
	if vuln.Kind != "vulnerability" || vuln.ID != "CVE-2024-0727" {
		t.Fatalf("unexpected vulnerability finding: %+v", vuln)
	}
	if !vuln.HasCVSS || vuln.CVSSScore != 7.5 {
		t.Fatalf("expected highest vendor V3Score 7.5, got %v %v", vuln.HasCVSS, vuln.CVSSScore)
	}
	if vuln.Package != "openssl@3.0.11" {
		t.Fatalf("unexpected package: %s", vuln.Package)
	}

	if findings[1].Kind != "misconfiguration" || findings[1].Severity != "critical" {
		t.Fatalf("unexpected misconfiguration finding: %+v", findings[1])
	}
	if findings[2].Kind != "secret" || findings[2].ID != "aws-access-key-id" {
		t.Fatalf("unexpected secret finding: %+v", findings[2])
	}
	for i, f := range findings {
		if f.SourceIndex != i {
			t.Fatalf("expected contiguous source indexes, got %d at %d", f.SourceIndex, i)
		}
	}
}

func TestParseAcceptsStringSchemaVersion(t *testing.T) {
	payload := []byte(`{"SchemaVersion":"2","Results":[]}`)
	findings, err := Parse("trivy.json", payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %d", len(findings))
	}
}

func TestParseRejectsUnsupportedSchemaVersion(t *testing.T) {
	payload := []byte(`{"SchemaVersion":9,"Results":[]}`)
	if _, err := Parse("trivy.json", payload); err == nil {
		t.Fatal("expected schema version error")
	} else if !strings.Contains(err.Error(), "unsupported SchemaVersion 9") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRejectsMissingResults(t *testing.T) {
	payload := []byte(`{"SchemaVersion":2,"ArtifactName":"img"}`)
	if _, err := Parse("trivy.json", payload); err == nil {
		t.Fatal("expected envelope error")
	} else if !strings.Contains(err.Error(), "missing top-level Results") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRejectsNonArrayResults(t *testing.T) {
	payload := []byte(`{"Results":{"Target":"x"}}`)
	if _, err := Parse("trivy.json", payload); err == nil {
		t.Fatal("expected envelope error")
	} else if !strings.Contains(err.Error(), "Results must be an array") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseVulnerabilityWithoutCVSSHasNoScore(t *testing.T) {
	payload := []byte(`{
  "Results":[
    {"Target":"img","Vulnerabilities":[{"VulnerabilityID":"CVE-2020-1","PkgName":"zlib","Severity":"LOW"}]}
  ]
}`)
	findings, err := Parse("trivy.json", payload)
	if err != nil {
		t.Fatal(err)
	}
	if findings[0].HasCVSS {
		t.Fatal("expected no cvss score")
	}
	if findings[0].Package != "zlib" {
		t.Fatalf("unexpected package: %s", findings[0].Package)
	}
}
