// Command qraudio-server is a demo WebSocket broadcaster: each client
// connection gets its own rotating sequence of QRAudio-encoded payloads,
// streamed as 20ms float32 PCM frames preceded by a JSON metadata
// message.
package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	qraudio "github.com/Hello10/qraudio-go"
	"github.com/Hello10/qraudio-go/internal/profile"
)

const (
	sampleRate   = 48000
	chunkSamples = 960 // 20ms at 48kHz
	silenceMs    = 500
	gapMs        = 1000
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type serverConfig struct {
	port            int
	profile         profile.Name
	randomPayloads  bool
	payloadMinBytes int
	payloadMaxBytes int
	seed            int64
	haveSeed        bool
}

func configFromEnv() serverConfig {
	cfg := serverConfig{
		port:            envInt("QRAUDIO_PORT", 5174),
		profile:         profile.Normalize(os.Getenv("QRAUDIO_PROFILE"), profile.GFSKFifth),
		randomPayloads:  os.Getenv("QRAUDIO_RANDOM") != "0",
		payloadMinBytes: envInt("QRAUDIO_PAYLOAD_MIN", 160),
		payloadMaxBytes: envInt("QRAUDIO_PAYLOAD_MAX", 800),
	}
	if seedStr := os.Getenv("QRAUDIO_SEED"); seedStr != "" {
		if seed, err := strconv.ParseInt(seedStr, 10, 64); err == nil {
			cfg.seed = seed
			cfg.haveSeed = true
		}
	}
	return cfg
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func main() {
	cfg := configFromEnv()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	if cfg.haveSeed {
		rng = rand.New(rand.NewSource(cfg.seed))
	}

	broadcaster := &payloadBroadcaster{cfg: cfg, rng: rng}

	if cfg.randomPayloads {
		log.Printf("QRAudio payloads: random (%d-%d bytes target)", cfg.payloadMinBytes, cfg.payloadMaxBytes)
	} else {
		log.Printf("QRAudio payloads: fixed rotation")
	}

	http.HandleFunc("/", broadcaster.handleConnection)
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.port)
	log.Printf("QRAudio demo server listening on ws://%s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

var fixedMessages = []map[string]interface{}{
	{"__type": "broadcast", "url": "https://example.com/alpha", "tag": "alpha"},
	{"__type": "broadcast", "url": "https://example.com/beta", "tag": "beta"},
	{"__type": "broadcast", "url": "https://example.com/gamma", "tag": "gamma"},
	{"__type": "broadcast", "url": "https://example.com/delta", "tag": "delta"},
}

type payloadBroadcaster struct {
	cfg serverConfig
	rng *rand.Rand
}

func (b *payloadBroadcaster) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sequence := 0
	meta := map[string]interface{}{
		"type":         "meta",
		"sampleRate":   sampleRate,
		"profile":      string(b.cfg.profile),
		"chunkSamples": chunkSamples,
	}
	if err := conn.WriteJSON(meta); err != nil {
		return
	}

	_, samples, err := b.buildSequence(sequence)
	if err != nil {
		log.Printf("encode failed: %v", err)
		return
	}
	sequence++

	cursor := 0
	interval := time.Duration(float64(chunkSamples)/float64(sampleRate)*1000) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		end := cursor + chunkSamples
		if end > len(samples) {
			end = len(samples)
		}
		chunk := samples[cursor:end]
		if err := conn.WriteMessage(websocket.BinaryMessage, float32LEBytes(chunk)); err != nil {
			return
		}
		cursor = end
		if cursor >= len(samples) {
			cursor = 0
			_, next, err := b.buildSequence(sequence)
			if err != nil {
				log.Printf("encode failed: %v", err)
				return
			}
			samples = next
			sequence++
		}
	}
}

func (b *payloadBroadcaster) buildSequence(sequence int) (interface{}, []float64, error) {
	var payload interface{}
	if b.cfg.randomPayloads {
		payload = b.buildRandomPayload(sequence)
	} else {
		payload = buildFixedPayload(sequence)
	}

	result, err := qraudio.Encode(payload, qraudio.EncodeOptions{
		SampleRate: sampleRate,
		Profile:    b.cfg.profile,
		Gzip:       qraudio.GzipNever,
	})
	if err != nil {
		return nil, nil, err
	}

	leadingSilence := make([]float64, roundMs(silenceMs, sampleRate))
	trailingSilence := make([]float64, roundMs(silenceMs+gapMs, sampleRate))

	combined := make([]float64, 0, len(leadingSilence)+len(result.Samples)+len(trailingSilence))
	combined = append(combined, leadingSilence...)
	combined = append(combined, result.Samples...)
	combined = append(combined, trailingSilence...)
	return payload, combined, nil
}

func buildFixedPayload(sequence int) map[string]interface{} {
	base := fixedMessages[sequence%len(fixedMessages)]
	payload := map[string]interface{}{}
	for k, v := range base {
		payload[k] = v
	}
	payload["meta"] = map[string]interface{}{
		"show":      "QRA",
		"createdAt": time.Now().UTC().Format(time.RFC3339),
		"sequence":  sequence,
		"bytes":     byteLength(payload),
	}
	return payload
}

func (b *payloadBroadcaster) buildRandomPayload(sequence int) map[string]interface{} {
	targetBytes := b.cfg.payloadMinBytes
	if b.cfg.payloadMaxBytes > b.cfg.payloadMinBytes {
		targetBytes += b.rng.Intn(b.cfg.payloadMaxBytes - b.cfg.payloadMinBytes + 1)
	}

	base := map[string]interface{}{
		"__type": "broadcast",
		"url":    "https://example.com/" + randomWord(b.rng),
		"tag":    randomWord(b.rng),
	}
	meta := map[string]interface{}{
		"show":        "QRA",
		"createdAt":   time.Now().UTC().Format(time.RFC3339),
		"sequence":    sequence,
		"targetBytes": targetBytes,
		"bytes":       0,
	}

	payload := map[string]interface{}{"__type": base["__type"], "url": base["url"], "tag": base["tag"], "blob": "", "meta": meta}
	size := byteLength(payload)
	if size < targetBytes {
		filler := randomFiller(b.rng, targetBytes-size)
		payload["blob"] = filler
		size = byteLength(payload)
		if size < targetBytes {
			filler = filler + fmt.Sprintf("%0*d", targetBytes-size, 0)
			payload["blob"] = filler
			size = byteLength(payload)
		}
	}
	meta["bytes"] = size
	return payload
}

const wordLetters = "abcdefghijklmnopqrstuvwxyz"
const fillerChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomWord(rng *rand.Rand) string {
	buf := make([]byte, 6)
	for i := range buf {
		buf[i] = wordLetters[rng.Intn(len(wordLetters))]
	}
	return string(buf)
}

func randomFiller(rng *rand.Rand, n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = fillerChars[rng.Intn(len(fillerChars))]
	}
	return string(buf)
}

func byteLength(payload interface{}) int {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0
	}
	return len(b)
}

func roundMs(ms, sampleRate int) int {
	return (ms * sampleRate) / 1000
}

func float32LEBytes(samples []float64) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(s)))
	}
	return out
}
