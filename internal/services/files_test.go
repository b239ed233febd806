package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpdswing/mineru-web/internal/models"
)

// multipartHeaders builds real multipart file headers the way gin hands them
// to the upload handler.
func multipartHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.7 test content"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["files"]
}

func newFileEnv() (*parserEnv, *FileService) {
	env := newParserEnv()
	svc := NewFileService(env.files, env.contents, env.objects, env.parser, env.parser.cfg)
	return env, svc
}

func TestUploadStoresFileAndQueuesParse(t *testing.T) {
	env, svc := newFileEnv()

	resp, err := svc.Upload(context.Background(), "u1", multipartHeaders(t, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, resp.Success)
	assert.Equal(t, 0, resp.Failed)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "success", resp.Files[0].Status)

	fileID := resp.Files[0].FileID
	stored := env.files.files[fileID]
	require.NotNil(t, stored)
	assert.Equal(t, "report.pdf", stored.Filename)
	assert.Equal(t, fileID.String()+".pdf", stored.MinioPath)
	assert.Contains(t, env.objects.objects, "uploads/"+stored.MinioPath)

	// A parse task went out for the new file.
	require.Len(t, env.queue.published, 1)
	assert.Equal(t, fileID.String(), env.queue.published[0]["file_id"])
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	env, svc := newFileEnv()

	resp, err := svc.Upload(context.Background(), "u1", multipartHeaders(t, "notes.docx", "scan.png"))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Success)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, "failed", resp.Files[0].Status)
	assert.Equal(t, "success", resp.Files[1].Status)
	assert.Len(t, env.files.files, 1)
}

func TestDeleteRemovesArtifacts(t *testing.T) {
	env, svc := newFileEnv()

	file := pendingFile("u1")
	file.Status = models.StatusParsed
	env.files.files[file.ID] = file

	stem := file.ID.String()
	env.objects.objects["uploads/"+file.MinioPath] = []byte("pdf")
	env.objects.objects["mds/"+stem+".md"] = []byte("md")
	env.objects.objects["mds/"+stem+"_pages.md"] = []byte("paged")

	require.NoError(t, svc.Delete(context.Background(), file.ID, "u1"))

	assert.NotContains(t, env.files.files, file.ID)
	assert.NotContains(t, env.objects.objects, "uploads/"+file.MinioPath)
	assert.NotContains(t, env.objects.objects, "mds/"+stem+".md")
	assert.NotContains(t, env.objects.objects, "mds/"+stem+"_pages.md")
}

func TestDownloadURL(t *testing.T) {
	env, svc := newFileEnv()

	file := pendingFile("u1")
	env.files.files[file.ID] = file

	url, err := svc.DownloadURL(context.Background(), file.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "http://signed.local/uploads/"+file.MinioPath, url)
}
