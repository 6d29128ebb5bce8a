package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	documentsUploadedTotal  atomic.Uint64
	documentsProcessedTotal atomic.Uint64
	documentsFailedTotal    atomic.Uint64

	assistForwardedTotal atomic.Uint64
	assistUpstreamErrors atomic.Uint64

	notificationsCreatedTotal atomic.Uint64

	processJobsReceivedTotal      atomic.Uint64
	processJobsCompletedTotal     atomic.Uint64
	processJobsFailedTotal        atomic.Uint64
	processJobsDeletedUnrecovered atomic.Uint64

	processingDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncDocumentsUploaded increments the uploaded counter.
func IncDocumentsUploaded() {
	documentsUploadedTotal.Add(1)
}

// IncDocumentsProcessed increments the processed counter.
func IncDocumentsProcessed() {
	documentsProcessedTotal.Add(1)
}

// IncDocumentsFailed increments the failed counter.
func IncDocumentsFailed() {
	documentsFailedTotal.Add(1)
}

// IncAssistForwarded increments the forwarded-request counter.
func IncAssistForwarded() {
	assistForwardedTotal.Add(1)
}

// IncAssistUpstreamError increments the upstream-error counter.
func IncAssistUpstreamError() {
	assistUpstreamErrors.Add(1)
}

// IncNotificationsCreated increments the notification counter.
func IncNotificationsCreated() {
	notificationsCreatedTotal.Add(1)
}

// IncProcessJobsReceived increments the worker received counter.
func IncProcessJobsReceived() {
	processJobsReceivedTotal.Add(1)
}

// IncProcessJobsCompleted increments the worker completed counter.
func IncProcessJobsCompleted() {
	processJobsCompletedTotal.Add(1)
}

// IncProcessJobsFailed increments the worker failed counter.
func IncProcessJobsFailed() {
	processJobsFailedTotal.Add(1)
}

// IncProcessJobsDeletedUnrecoverable increments the unrecoverable-delete counter.
func IncProcessJobsDeletedUnrecoverable() {
	processJobsDeletedUnrecovered.Add(1)
}

// ObserveProcessingDurationMs records a document processing duration in milliseconds.
func ObserveProcessingDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	processingDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "documents_uploaded_total", "Total documents uploaded", documentsUploadedTotal.Load())
	writeCounter(&buf, "documents_processed_total", "Total documents processed", documentsProcessedTotal.Load())
	writeCounter(&buf, "documents_failed_total", "Total documents that failed processing", documentsFailedTotal.Load())
	writeCounter(&buf, "assist_forwarded_total", "Total assist requests forwarded to the backend", assistForwardedTotal.Load())
	writeCounter(&buf, "assist_upstream_errors_total", "Total assist backend transport errors", assistUpstreamErrors.Load())
	writeCounter(&buf, "notifications_created_total", "Total notifications created", notificationsCreatedTotal.Load())
	writeCounter(&buf, "process_jobs_received_total", "Total processing jobs received", processJobsReceivedTotal.Load())
	writeCounter(&buf, "process_jobs_completed_total", "Total processing jobs completed", processJobsCompletedTotal.Load())
	writeCounter(&buf, "process_jobs_failed_total", "Total processing jobs failed", processJobsFailedTotal.Load())
	writeCounter(&buf, "process_jobs_deleted_unrecoverable_total", "Total undecodable jobs deleted", processJobsDeletedUnrecovered.Load())
	writeHistogram(&buf, "document_processing_duration_ms", "Document processing duration in milliseconds", processingDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	for i, bound := range snap.buckets {
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatBound(bound), snap.counts[i])
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, strconv.FormatFloat(snap.sum, 'f', -1, 64))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatBound(bound float64) string {
	return strconv.FormatFloat(bound, 'f', -1, 64)
}
