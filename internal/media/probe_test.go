package media

import (
	"testing"
)

const probeJSONFull = `{
  "streams": [
    {
      "codec_type": "video",
      "codec_name": "h264",
      "width": 1920,
      "height": 1080,
      "r_frame_rate": "30000/1001",
      "avg_frame_rate": "30000/1001"
    },
    {
      "codec_type": "audio",
      "codec_name": "aac",
      "channels": 2,
      "sample_rate": "44100"
    }
  ],
  "format": {
    "duration": "12.480000"
  }
}`

func TestParseProbeOutputFull(t *testing.T) {
	info, err := parseProbeOutput([]byte(probeJSONFull))
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("dimensions = %dx%d, want 1920x1080", info.Width, info.Height)
	}
	if info.VideoCodec != "h264" {
		t.Errorf("video codec = %q, want h264", info.VideoCodec)
	}
	want := 30000.0 / 1001.0
	if diff := info.FrameRate - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("frame rate = %v, want %v", info.FrameRate, want)
	}
	if !info.HasAudio {
		t.Fatal("HasAudio = false, want true")
	}
	if info.AudioCodec != "aac" || info.AudioChannels != 2 || info.SampleRate != 44100 {
		t.Errorf("audio = %q/%d/%d, want aac/2/44100", info.AudioCodec, info.AudioChannels, info.SampleRate)
	}
	if info.DurationSecs != 12.48 {
		t.Errorf("duration = %v, want 12.48", info.DurationSecs)
	}
}

func TestParseProbeOutputVideoOnly(t *testing.T) {
	data := `{
  "streams": [
    {"codec_type": "video", "codec_name": "vp9", "width": 640, "height": 360, "avg_frame_rate": "25"}
  ],
  "format": {}
}`
	info, err := parseProbeOutput([]byte(data))
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}
	if info.HasAudio {
		t.Error("HasAudio = true for video-only file")
	}
	if info.FrameRate != 25 {
		t.Errorf("frame rate = %v, want 25", info.FrameRate)
	}
}

func TestParseProbeOutputFirstVideoStreamWins(t *testing.T) {
	data := `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720, "avg_frame_rate": "30"},
    {"codec_type": "video", "codec_name": "mjpeg", "width": 320, "height": 180, "avg_frame_rate": "1"}
  ],
  "format": {}
}`
	info, err := parseProbeOutput([]byte(data))
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}
	if info.Width != 1280 || info.VideoCodec != "h264" {
		t.Errorf("got %dx%d %s, want the first video stream (1280x720 h264)",
			info.Width, info.Height, info.VideoCodec)
	}
}

func TestParseProbeOutputNoVideo(t *testing.T) {
	data := `{"streams": [{"codec_type": "audio", "codec_name": "mp3"}], "format": {}}`
	if _, err := parseProbeOutput([]byte(data)); err == nil {
		t.Fatal("expected error for file without a video stream")
	}
}

func TestParseProbeOutputBadJSON(t *testing.T) {
	if _, err := parseProbeOutput([]byte("not json")); err == nil {
		t.Fatal("expected error for unparseable output")
	}
}

func TestParseProbeOutputFallsBackToRFrameRate(t *testing.T) {
	data := `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 100, "height": 100,
     "avg_frame_rate": "0/0", "r_frame_rate": "24/1"}
  ],
  "format": {}
}`
	info, err := parseProbeOutput([]byte(data))
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}
	if info.FrameRate != 24 {
		t.Errorf("frame rate = %v, want fallback to r_frame_rate 24", info.FrameRate)
	}
}

func TestParseRational(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"25", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"24/1", 24},
		{"0/0", 0},
		{"", 0},
		{"abc", 0},
		{"1/abc", 0},
	}
	for _, tc := range cases {
		if got := parseRational(tc.in); got != tc.want {
			t.Errorf("parseRational(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
