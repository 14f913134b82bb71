package detector

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const epsilon = 1e-9

func TestHandLandmarks_PalmCenter(t *testing.T) {
	hand := OpenPalmLandmarks()
	c := hand.PalmCenter()

	wantX := (0.50 + 0.55 + 0.55 + 0.50 + 0.45 + 0.40) / 6
	wantY := (0.80 + 0.75 + 0.68 + 0.66 + 0.68 + 0.70) / 6

	if math.Abs(c.X-wantX) > epsilon || math.Abs(c.Y-wantY) > epsilon {
		t.Errorf("PalmCenter = (%f, %f), want (%f, %f)", c.X, c.Y, wantX, wantY)
	}
}

func TestHandLandmarks_Mirror(t *testing.T) {
	hand := OpenPalmLandmarks()
	mirrored := hand.Mirror()

	if mirrored.Handedness != "Left" {
		t.Errorf("expected handedness Left, got %s", mirrored.Handedness)
	}
	for i := range hand.Points {
		if math.Abs(mirrored.Points[i].X-(1-hand.Points[i].X)) > epsilon {
			t.Fatalf("landmark %d not mirrored", i)
		}
		if mirrored.Points[i].Y != hand.Points[i].Y {
			t.Fatalf("landmark %d y changed", i)
		}
	}
	if hand.Handedness != "Right" {
		t.Error("Mirror modified the receiver")
	}
}

func TestNewFrame(t *testing.T) {
	ts := time.Unix(100, 0)

	t.Run("caps at two hands", func(t *testing.T) {
		hands := []HandLandmarks{OpenPalmLandmarks(), FistLandmarks(), OpenPalmLandmarks()}
		f := NewFrame(hands, ts)
		if len(f.Hands) != MaxHands {
			t.Fatalf("expected %d hands, got %d", MaxHands, len(f.Hands))
		}
		if !f.Timestamp.Equal(ts) {
			t.Errorf("timestamp not preserved")
		}
	})

	t.Run("drops non-finite hands", func(t *testing.T) {
		bad := OpenPalmLandmarks()
		bad.Points[IndexTip].X = math.NaN()
		f := NewFrame([]HandLandmarks{bad, FistLandmarks()}, ts)
		if len(f.Hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(f.Hands))
		}
		if f.Primary().Points[IndexTip] != FistLandmarks().Points[IndexTip] {
			t.Error("expected the fist to become the primary hand")
		}
	})

	t.Run("empty frame has no primary", func(t *testing.T) {
		f := NewFrame(nil, ts)
		if f.Primary() != nil {
			t.Error("expected nil primary hand")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{FistLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if !mock.Closed() {
			t.Error("expected Closed to report true")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
	})
}

func TestFixtures_FingerExtension(t *testing.T) {
	meanTip := func(h HandLandmarks) float64 {
		sum := 0.0
		for _, tip := range Fingertips {
			sum += Distance2D(h.Points[Wrist], h.Points[tip])
		}
		return sum / float64(len(Fingertips))
	}

	open := meanTip(OpenPalmLandmarks())
	fist := meanTip(FistLandmarks())

	if open < 0.25 {
		t.Errorf("open palm mean tip distance %f, expected >= 0.25", open)
	}
	if fist > 0.15 {
		t.Errorf("fist mean tip distance %f, expected <= 0.15", fist)
	}
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0xff, 0xd8, 0x01, 0x02}

	if err := writeFrame(&buf, payload); err != nil {
		t.Fatalf("writeFrame error = %v", err)
	}

	out := buf.Bytes()
	if got := binary.BigEndian.Uint32(out[:4]); got != uint32(len(payload)) {
		t.Errorf("length prefix = %d, want %d", got, len(payload))
	}
	if !bytes.Equal(out[4:], payload) {
		t.Errorf("payload = %v, want %v", out[4:], payload)
	}
}

func TestReadHands(t *testing.T) {
	points := make([]string, NumLandmarks)
	for i := range points {
		points[i] = `{"x":0.5,"y":0.5,"z":0}`
	}
	full := `{"points":[` + strings.Join(points, ",") + `],"handedness":"Left","score":0.9}`
	short := `{"points":[{"x":0.1,"y":0.1,"z":0}],"handedness":"Right","score":0.8}`

	tests := []struct {
		name      string
		line      string
		wantHands int
		wantErr   bool
	}{
		{name: "no hands", line: `{"hands":[]}`, wantHands: 0},
		{name: "one full hand", line: `{"hands":[` + full + `]}`, wantHands: 1},
		{name: "short hand dropped", line: `{"hands":[` + short + `,` + full + `]}`, wantHands: 1},
		{name: "service error", line: `{"error":"model not loaded"}`, wantErr: true},
		{name: "garbage", line: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(tt.line + "\n"))
			hands, err := readHands(r)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(hands) != tt.wantHands {
				t.Errorf("expected %d hands, got %d", tt.wantHands, len(hands))
			}
		})
	}
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = filepath.Join(t.TempDir(), "missing.py")

	_, err := NewMediaPipeDetector(cfg)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
