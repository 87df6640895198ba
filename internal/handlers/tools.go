package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	applog "brigade/internal/log"
	"brigade/internal/pricelist"
)

const maxPriceListUploadSize = 5 << 20 // 5 MiB

type importResponse struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Issues  []string `json:"issues,omitempty"`
}

// ToolsImportIngredients accepts a supplier price list upload (CSV, PDF or
// plain text, form field "price_list") and upserts the ingredient prices it holds.
func ToolsImportIngredients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPriceListUploadSize+1<<10)
	if err := r.ParseMultipartForm(maxPriceListUploadSize); err != nil {
		applog.Debug(r.Context(), "failed to parse price list upload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "upload is too large or invalid")
		return
	}

	name, data, mime, err := readPriceListUpload(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := pricelist.Parse(data, mime)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, pricelist.ErrEmpty) && !errors.Is(err, pricelist.ErrMissingColumns) {
			applog.Warn(r.Context(), "price list could not be read", "file", name, "error", err)
		}
		writeJSONError(w, status, fmt.Sprintf("could not read %s: %v", name, err))
		return
	}

	summary, err := kitchen.UpsertPrices(r.Context(), list.Entries)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := importResponse{Created: summary.Created, Updated: summary.Updated}
	for _, issue := range list.Issues {
		resp.Issues = append(resp.Issues, issue.String())
	}
	applog.Info(r.Context(), "price list uploaded", "file", name, "created", summary.Created, "updated", summary.Updated, "issues", len(list.Issues))
	writeJSON(w, http.StatusOK, resp)
}

func readPriceListUpload(r *http.Request) (string, []byte, string, error) {
	file, header, err := r.FormFile("price_list")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, "", errors.New("attach a price list file")
		}
		return "", nil, "", err
	}
	defer file.Close()

	if header.Size > maxPriceListUploadSize {
		return "", nil, "", fmt.Errorf("file exceeds %d bytes", maxPriceListUploadSize)
	}

	buf := bytes.NewBuffer(make([]byte, 0, header.Size))
	if _, err := io.Copy(buf, file); err != nil {
		return "", nil, "", err
	}

	mime := pricelist.MimeTypeFromName(header.Filename)
	if mime == "application/octet-stream" {
		if declared := header.Header.Get("Content-Type"); declared != "" {
			mime = declared
		}
	}
	return header.Filename, buf.Bytes(), mime, nil
}
