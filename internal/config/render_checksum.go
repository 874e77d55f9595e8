package config

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
)

type renderChecksumPayload struct {
	Format        string   `json:"format"`
	WidthIn       float64  `json:"width_in"`
	HeightIn      float64  `json:"height_in"`
	DPI           int      `json:"dpi"`
	FailureTarget float64  `json:"failure_target"`
	TopN          int      `json:"top_n"`
	SubsetWriters int      `json:"subset_writers,omitempty"`
	SubsetRate    float64  `json:"subset_rate,omitempty"`
	Scenarios     []string `json:"scenarios"`
}

// RenderChecksum returns a short, stable checksum of the output and threshold
// settings. It tells apart runs made with different render settings. The
// report title, the baseline and the dataset are not part of it, and equal
// checksums do not imply byte-identical artifacts.
//
// It computes MD5 over a canonical JSON representation and returns the first 6 hex
// characters.
func RenderChecksum(cfg *ReportConfig) (string, error) {
	if cfg == nil {
		return "", nil
	}

	payload := renderChecksumPayload{
		Format:        cfg.Output.Format,
		WidthIn:       cfg.Output.WidthIn,
		HeightIn:      cfg.Output.HeightIn,
		DPI:           cfg.Output.DPI,
		FailureTarget: cfg.Thresholds.FailureTarget,
		TopN:          cfg.Thresholds.TopN,
		Scenarios:     cfg.Chaos.Scenarios,
	}
	if s := cfg.OverlapSubset; s != nil {
		payload.SubsetWriters = s.NumWriters
		payload.SubsetRate = s.WriterRate
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := md5.Sum(b)
	hexStr := hex.EncodeToString(sum[:])
	if len(hexStr) > 6 {
		hexStr = hexStr[:6]
	}
	return hexStr, nil
}
