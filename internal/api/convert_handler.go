package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/heimdex/prproj-export/internal/convert"
	"github.com/heimdex/prproj-export/internal/export"
	"github.com/heimdex/prproj-export/internal/flatten"
	"github.com/heimdex/prproj-export/internal/timecode"
)

const multipartMemory = 32 << 20

type upload struct {
	filename string
	data     []byte
}

// readUpload reads the multipart "file" field, bounded by the configured
// upload size.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*upload, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, err
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &upload{filename: header.Filename, data: data}, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), "PAYLOAD_TOO_LARGE")
		return
	}
	WriteError(w, http.StatusBadRequest, "multipart field \"file\" is required", "BAD_REQUEST")
}

func queryBool(r *http.Request, name string, def bool) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return b, nil
}

func queryFPS(r *http.Request) (int, error) {
	v := r.URL.Query().Get("fps")
	if v == "" {
		return 0, nil
	}
	fps, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("fps must be an integer")
	}
	if err := timecode.ValidateFPS(fps); err != nil {
		return 0, err
	}
	return fps, nil
}

func flattenOptions(r *http.Request) (flatten.Options, error) {
	opts := flatten.DefaultOptions()
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{"expand_nested", &opts.ExpandNested},
		{"include_parent", &opts.IncludeParent},
		{"keep_empty", &opts.KeepEmptyNested},
		{"scope_by_kind", &opts.ScopeNestedByKind},
		{"clip_to_placement", &opts.ClipToPlacement},
	} {
		v, err := queryBool(r, f.name, *f.dst)
		if err != nil {
			return opts, err
		}
		*f.dst = v
	}
	return opts, nil
}

func sequencesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fps, err := queryFPS(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		up, err := readUpload(w, r, cfg.MaxUploadBytes)
		if err != nil {
			writeUploadError(w, err)
			return
		}

		infos, err := cfg.Converter.Sequences(r.Context(), up.data, fps)
		if err != nil {
			writeProjectError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, SequencesResponse{Filename: up.filename, Sequences: infos})
	}
}

func convertHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		format, err := export.ParseFormat(q.Get("format"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		fps, err := queryFPS(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		opts, err := flattenOptions(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		extended, err := queryBool(r, "extended", false)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		up, err := readUpload(w, r, cfg.MaxUploadBytes)
		if err != nil {
			writeUploadError(w, err)
			return
		}

		res, err := cfg.Converter.Convert(r.Context(), convert.Request{
			Filename: up.filename,
			Data:     up.data,
			FPS:      fps,
			Sequence: q.Get("sequence"),
			Flatten:  opts,
		})
		if err != nil {
			writeProjectError(w, err)
			return
		}

		var buf bytes.Buffer
		err = export.Write(&buf, res.Rows, export.Options{
			Format:   format,
			Extended: extended,
			Title:    res.Sequence,
			FPS:      res.FPS,
		})
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to render export", "INTERNAL_ERROR")
			return
		}

		h := w.Header()
		h.Set("Content-Type", format.ContentType())
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": export.OutputName(up.filename, res.Sequence, format),
		}))
		h.Set("X-Sequence", res.Sequence)
		if res.ConversionID != "" {
			h.Set("X-Conversion-ID", res.ConversionID)
		}
		if res.Cached {
			h.Set("X-Cache", "HIT")
		} else {
			h.Set("X-Cache", "MISS")
		}
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}
