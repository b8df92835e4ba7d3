package api

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/media/audio"
)

func (s *Server) registerSpeechRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPostAudio",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{slug}/audio",
		Summary:     "Read post aloud",
		Description: "Returns a WAV recording of a visible post, synthesized on first request",
		Tags:        []string{"Posts"},
		Middlewares: huma.Middlewares{s.limitSpeech},
	}, s.handleGetPostAudio)
}

func (s *Server) handleGetPostAudio(ctx context.Context, input *PostSlugInput) (*huma.StreamResponse, error) {
	if s.services.Speech == nil {
		return nil, domainerrors.GenerationFailed("AI speech is not configured", nil)
	}

	speech, err := s.services.Speech.Read(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(speech.Path)
	if err != nil {
		return nil, domainerrors.Storage("open speech audio", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, domainerrors.Storage("stat speech audio", err)
	}

	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			defer f.Close()
			ctx.SetHeader("Content-Type", audio.MIMEType)
			ctx.SetHeader("Content-Length", strconv.FormatInt(info.Size(), 10))
			// The name changes whenever the text does.
			ctx.SetHeader("Cache-Control", "public, max-age=3600")
			ctx.SetHeader("ETag", strconv.Quote(speech.Name))
			if _, err := io.Copy(ctx.BodyWriter(), f); err != nil {
				s.logger.Warn("failed to stream speech audio", "file", speech.Name, "error", err)
			}
		},
	}, nil
}
