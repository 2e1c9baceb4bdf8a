// Package media wraps ffmpeg and ffprobe as the decode/encode collaborator:
// probing stream properties, streaming decoded video frames in, and streaming
// composited frames out to an H.264/MP4 file.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegPath and FFprobePath name the binaries to exec. Overridable for
// deployments that bundle their own builds.
var (
	FFmpegPath  = "ffmpeg"
	FFprobePath = "ffprobe"
)

// StreamInfo carries the source properties the encoder needs to mirror.
type StreamInfo struct {
	Width         int
	Height        int
	FrameRate     float64
	DurationSecs  float64
	VideoCodec    string
	HasAudio      bool
	AudioCodec    string
	AudioChannels int
	SampleRate    int
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Channels     int    `json:"channels"`
		SampleRate   string `json:"sample_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reads the stream properties of the media file at path.
func Probe(ctx context.Context, path string) (*StreamInfo, error) {
	cmd := exec.CommandContext(ctx, FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(data []byte) (*StreamInfo, error) {
	var parsed ffprobeOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &StreamInfo{}
	if parsed.Format.Duration != "" {
		info.DurationSecs, _ = strconv.ParseFloat(parsed.Format.Duration, 64)
	}
	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			if info.VideoCodec != "" {
				continue // first video stream wins
			}
			info.VideoCodec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			info.FrameRate = parseRational(s.AvgFrameRate)
			if info.FrameRate == 0 {
				info.FrameRate = parseRational(s.RFrameRate)
			}
		case "audio":
			if info.HasAudio {
				continue
			}
			info.HasAudio = true
			info.AudioCodec = s.CodecName
			info.AudioChannels = s.Channels
			info.SampleRate, _ = strconv.Atoi(s.SampleRate)
		}
	}
	if info.VideoCodec == "" {
		return nil, errors.New("no video stream found")
	}
	return info, nil
}

// parseRational parses ffprobe rate strings like "30000/1001" or "25".
// Returns 0 for unparseable or zero-denominator input.
func parseRational(s string) float64 {
	if s == "" {
		return 0
	}
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
