package handler

import "net/http"

type healthResponse struct {
	Status string      `json:"status"`
	Disk   *healthDisk `json:"disk,omitempty"`
}

type healthDisk struct {
	TotalBytes uint64  `json:"total_bytes"`
	FreeBytes  uint64  `json:"free_bytes"`
	JobsBytes  uint64  `json:"jobs_bytes"`
	PctFree    float64 `json:"pct_free"`
}

// Healthz — GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.DiskCache != nil {
		s := h.DiskCache.Get()
		resp.Disk = &healthDisk{
			TotalBytes: s.TotalBytes,
			FreeBytes:  s.FreeBytes,
			JobsBytes:  s.JobsBytes,
			PctFree:    s.PctFree(),
		}
	}
	renderJSON(w, http.StatusOK, resp)
}
