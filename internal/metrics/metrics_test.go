package metrics

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

func TestNew_AutoLabel(t *testing.T) {
	initOnce.Do(func() {})
	serviceName = "analyze-function"

	r := New("Archivion")
	if r.namespace != "Archivion" {
		t.Errorf("expected namespace Archivion, got %s", r.namespace)
	}
	if r.labels["service"] != "analyze-function" {
		t.Errorf("expected service label analyze-function, got %s", r.labels["service"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	old := os.Stdout
	pr, pw, _ := os.Pipe()
	os.Stdout = pw

	serviceName = "" // isolate from runtime env

	rec := New("Archivion")
	rec.Label("operation", "analyzeImage")
	rec.Metric("visionMs", 812.5, UnitMilliseconds)
	rec.Count("imagesAnalyzed")
	rec.Property("assetId", "ab12cd")
	rec.Flush()

	pw.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(pr)
	output := buf.String()

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("failed to parse metric output as JSON: %v\nOutput: %s", err, output)
	}

	if doc["metricsNamespace"] != "Archivion" {
		t.Errorf("expected namespace Archivion, got %v", doc["metricsNamespace"])
	}

	metrics, ok := doc["metrics"].(map[string]interface{})
	if !ok {
		t.Fatal("missing metrics block in document")
	}
	vision, ok := metrics["visionMs"].(map[string]interface{})
	if !ok {
		t.Fatal("missing visionMs metric")
	}
	if vision["value"] != 812.5 {
		t.Errorf("expected visionMs value 812.5, got %v", vision["value"])
	}
	if vision["unit"] != UnitMilliseconds {
		t.Errorf("expected visionMs unit %s, got %v", UnitMilliseconds, vision["unit"])
	}

	labels, ok := doc["labels"].(map[string]interface{})
	if !ok {
		t.Fatal("missing labels block in document")
	}
	if labels["operation"] != "analyzeImage" {
		t.Errorf("expected operation label analyzeImage, got %v", labels["operation"])
	}

	if doc["assetId"] != "ab12cd" {
		t.Errorf("expected assetId property ab12cd, got %v", doc["assetId"])
	}
}

func TestRecorder_EmptyFlushEmitsNothing(t *testing.T) {
	old := os.Stdout
	pr, pw, _ := os.Pipe()
	os.Stdout = pw

	New("Archivion").Property("assetId", "x").Flush()

	pw.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(pr)
	if buf.Len() != 0 {
		t.Errorf("expected no output for metric-less flush, got %q", buf.String())
	}
}
