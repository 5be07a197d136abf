// Command qraudio is the reference CLI for the QRAudio codec: encode a
// JSON payload to WAV, decode or scan a WAV for payloads, or prepend a
// freshly-encoded payload onto an existing recording.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	qraudio "github.com/Hello10/qraudio-go"
	"github.com/Hello10/qraudio-go/internal/profile"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: qraudio <encode|decode|scan|prepend> [flags]")
	}

	switch args[0] {
	case "encode":
		return runEncode(args[1:])
	case "decode":
		return runDecode(args[1:])
	case "scan":
		return runScan(args[1:])
	case "prepend":
		return runPrepend(args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	payloadFile := fs.String("file", "", "path to JSON payload")
	outPath := fs.String("out", "", "path to output WAV file")
	profileFlag := fs.String("profile", "", "modem profile")
	format := fs.String("format", "pcm16", "pcm16 or float32")
	gzipFlag := fs.Bool("gzip", false, "compress the payload before framing")
	noFEC := fs.Bool("no-fec", false, "disable Reed-Solomon FEC")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload, err := readJSON(*payloadFile)
	if err != nil {
		return err
	}

	fec := !*noFEC
	gzipMode := qraudio.GzipAuto
	if *gzipFlag {
		gzipMode = qraudio.GzipAlways
	}
	result, err := qraudio.EncodeWav(payload, qraudio.EncodeOptions{
		Profile: profile.Name(*profileFlag),
		FEC:     &fec,
		Gzip:    gzipMode,
	}, wavFormat(*format))
	if err != nil {
		return err
	}
	return writeWav(result.Wav, *outPath)
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	inPath := fs.String("in", "", "path to input WAV file")
	profileFlag := fs.String("profile", "", "modem profile")
	if err := fs.Parse(args); err != nil {
		return err
	}

	wavBytes, err := readWav(*inPath)
	if err != nil {
		return err
	}
	decoded, err := qraudio.DecodeWav(wavBytes, decodeOptions(*profileFlag))
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(decoded.JSON)
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	inPath := fs.String("in", "", "path to input WAV file")
	profileFlag := fs.String("profile", "", "modem profile")
	if err := fs.Parse(args); err != nil {
		return err
	}

	wavBytes, err := readWav(*inPath)
	if err != nil {
		return err
	}
	results, err := qraudio.ScanWav(wavBytes, decodeOptions(*profileFlag))
	if err != nil {
		return err
	}
	payloads := make([]interface{}, len(results))
	for i, r := range results {
		payloads[i] = r.JSON
	}
	return json.NewEncoder(os.Stdout).Encode(payloads)
}

func runPrepend(args []string) error {
	fs := flag.NewFlagSet("prepend", flag.ContinueOnError)
	inPath := fs.String("in", "", "path to input WAV file")
	payloadFile := fs.String("file", "", "path to JSON payload")
	outPath := fs.String("out", "", "path to output WAV file")
	profileFlag := fs.String("profile", "", "modem profile")
	format := fs.String("format", "pcm16", "pcm16 or float32")
	padSeconds := fs.Float64("pad-seconds", 0.25, "silence padding on both sides")
	prePadSeconds := fs.Float64("pre-pad-seconds", -1, "silence padding before the payload")
	postPadSeconds := fs.Float64("post-pad-seconds", -1, "silence padding after the payload")
	gzipFlag := fs.Bool("gzip", false, "compress the payload before framing")
	noFEC := fs.Bool("no-fec", false, "disable Reed-Solomon FEC")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return fmt.Errorf("prepend requires --in")
	}

	wavBytes, err := readWav(*inPath)
	if err != nil {
		return err
	}
	payload, err := readJSON(*payloadFile)
	if err != nil {
		return err
	}

	fec := !*noFEC
	gzipMode := qraudio.GzipAuto
	if *gzipFlag {
		gzipMode = qraudio.GzipAlways
	}
	padding := qraudio.PrependPadding{PadSeconds: *padSeconds}
	if *prePadSeconds >= 0 {
		padding.PrePadSeconds = prePadSeconds
	}
	if *postPadSeconds >= 0 {
		padding.PostPadSeconds = postPadSeconds
	}

	result, err := qraudio.PrependPayloadToWav(wavBytes, payload, padding, qraudio.EncodeOptions{
		Profile: profile.Name(*profileFlag),
		FEC:     &fec,
		Gzip:    gzipMode,
	}, wavFormat(*format))
	if err != nil {
		return err
	}
	return writeWav(result.Wav, *outPath)
}

func decodeOptions(profileName string) qraudio.DecodeOptions {
	if profileName == "" {
		return qraudio.DecodeOptions{}
	}
	return qraudio.DecodeOptions{Profile: profile.Name(profileName), HasProfile: true}
}

func wavFormat(s string) qraudio.WavFormat {
	if s == "float32" {
		return qraudio.WavFloat32
	}
	return qraudio.WavPCM16
}

func readJSON(path string) (interface{}, error) {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no JSON input provided")
	}
	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func readWav(path string) ([]byte, error) {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no WAV input provided")
	}
	return data, nil
}

func writeWav(wav []byte, path string) error {
	if path != "" {
		return os.WriteFile(path, wav, 0o644)
	}
	_, err := os.Stdout.Write(wav)
	return err
}
