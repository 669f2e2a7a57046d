// Command recorder plays a WAV file into a session's recording channel the
// way a browser microphone capture would: mono-reduced, resampled to 16 kHz,
// 4096-native-sample chunks, base64 over the websocket protocol.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gorilla/websocket"

	conv "github.com/praxisnote/transcription/internal/audio"
	"github.com/praxisnote/transcription/internal/realtime"
)

func main() {
	file := flag.String("file", "", "Path to a PCM WAV file to stream")
	server := flag.String("server", "ws://localhost:8080", "Server base URL (ws:// or wss://)")
	sessionID := flag.String("session", "", "Clinical session ID to record into")
	userID := flag.String("user", "", "Acting user ID")
	realtimePace := flag.Bool("pace", true, "Pace chunks at real-time speed")
	flag.Parse()

	if *file == "" || *sessionID == "" || *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	samples, rate, err := loadWAV(*file)
	if err != nil {
		log.Fatalf("load wav: %v", err)
	}
	log.Printf("loaded %d mono samples at %d Hz", len(samples), rate)

	url := fmt.Sprintf("%s/v1/sessions/%s/record", *server, *sessionID)
	header := http.Header{"X-User-ID": []string{*userID}}
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	defer ws.Close()

	done := make(chan struct{})
	go readServerMessages(ws, done)

	if err := send(ws, realtime.ClientMessage{Type: realtime.MessageTypeStart}); err != nil {
		log.Fatalf("start: %v", err)
	}

	chunkInterval := time.Duration(float64(conv.DefaultChunkSize) / float64(rate) * float64(time.Second))
	encoder := conv.NewCaptureEncoder(conv.EncoderConfig{NativeRate: rate}, func(chunk string) error {
		if *realtimePace {
			time.Sleep(chunkInterval)
		}
		return send(ws, realtime.ClientMessage{Type: realtime.MessageTypeChunk, Audio: chunk})
	}, nil)

	encoder.Push(samples)
	encoder.Close()

	if err := send(ws, realtime.ClientMessage{Type: realtime.MessageTypeStop}); err != nil {
		log.Fatalf("stop: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Minute):
		log.Fatal("timed out waiting for the transcript to persist")
	}
}

func loadWAV(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil {
		return nil, 0, fmt.Errorf("not a PCM WAV file")
	}

	floats := intBufferToFloat32(buf)
	mono := conv.MixToMono(floats, buf.Format.NumChannels)
	return mono, buf.Format.SampleRate, nil
}

func intBufferToFloat32(buf *audio.IntBuffer) []float32 {
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float32(int(1) << (bitDepth - 1))

	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(v) / scale
	}
	return out
}

func send(ws *websocket.Conn, msg realtime.ClientMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return ws.WriteMessage(websocket.TextMessage, data)
}

func readServerMessages(ws *websocket.Conn, done chan<- struct{}) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var msg realtime.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case realtime.MessageTypeUpdate:
			log.Printf("update: %s", msg.Transcript)
		case realtime.MessageTypeStatus:
			log.Printf("status: %s %s", msg.Status, msg.Message)
			if msg.Status == realtime.StatusError {
				log.Fatal("recording failed")
			}
		case realtime.MessageTypePersisted:
			log.Printf("transcript persisted")
			close(done)
			return
		}
	}
}
