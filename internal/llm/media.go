package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go"
)

// MediaModels names the OpenAI models used outside chat completion.
type MediaModels struct {
	Image         string
	ImageSize     string
	Speech        string
	Voice         string
	Transcription string
	Vision        string
}

func (m MediaModels) withDefaults() MediaModels {
	if m.Image == "" {
		m.Image = "dall-e-3"
	}
	if m.ImageSize == "" {
		m.ImageSize = "1024x1024"
	}
	if m.Speech == "" {
		m.Speech = "tts-1"
	}
	if m.Voice == "" {
		m.Voice = "nova"
	}
	if m.Transcription == "" {
		m.Transcription = "whisper-1"
	}
	if m.Vision == "" {
		m.Vision = "gpt-4o"
	}
	return m
}

// maxSpeechBytes caps the synthesized audio read into memory.
const maxSpeechBytes = 20 << 20

// GenerateImage creates one image for prompt and returns its URL.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(p.media.Image),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(p.media.ImageSize),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", &LLMError{Type: ErrorEmpty, Message: "image generation returned no image"}
	}
	return resp.Data[0].URL, nil
}

// Synthesize turns text into Ogg/Opus audio suitable for a voice note.
func (p *OpenAIProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := p.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(p.media.Speech),
		Voice:          openai.AudioSpeechNewParamsVoice(p.media.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatOpus,
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LLMError{Type: classifyStatus(resp.StatusCode), Message: fmt.Sprintf("speech returned status %d", resp.StatusCode)}
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxSpeechBytes))
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	if len(audio) == 0 {
		return nil, &LLMError{Type: ErrorEmpty, Message: "speech returned no audio"}
	}
	return audio, nil
}

// Transcribe converts recorded speech to text. filename carries the
// container type (e.g. "voice.ogg") for the API.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	resp, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), filename, "audio/ogg"),
		Model: openai.AudioModel(p.media.Transcription),
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if resp.Text == "" {
		return "", &LLMError{Type: ErrorEmpty, Message: "transcription returned no text"}
	}
	return resp.Text, nil
}

// Describe asks the vision model about a JPEG image.
func (p *OpenAIProvider) Describe(ctx context.Context, image []byte, prompt string) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
	}
	user := openai.ChatCompletionUserMessageParam{
		Content: openai.ChatCompletionUserMessageParamContentUnion{OfArrayOfContentParts: parts},
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    p.media.Vision,
		Messages: []openai.ChatCompletionMessageParamUnion{{OfUser: &user}},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &LLMError{Type: ErrorEmpty, Message: "vision returned no description"}
	}
	return resp.Choices[0].Message.Content, nil
}
