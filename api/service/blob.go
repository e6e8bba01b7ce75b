package service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/docker/go-units"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/tia-gather/gatherd/onchaindb"
)

// maxBlobSize caps image uploads; Celestia blobs top out around 1.5MB.
const maxBlobSize = 3 << 19

var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

type uploadBlobResp struct {
	BlobID      string `json:"blob_id"`
	BlobURL     string `json:"blob_url"`
	SizeBytes   int    `json:"size_bytes"`
	Size        string `json:"size"`
	ContentType string `json:"content_type"`
}

// UploadBlob handles the POST /blobs/upload request: a gathering image
// stored as a blob, payment gated on the blob's size.
func (s *Service) UploadBlob(c *gin.Context) (*uploadBlobResp, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, errMissingFile
	}

	contentType := file.Header.Get("Content-Type")
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, errInvalidFileType
	}

	if file.Size > maxBlobSize {
		return nil, errFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if len(data) > maxBlobSize {
		return nil, errFileTooLarge
	}

	ctx := c.Request.Context()
	sizeKb := rawSizeKb(len(data))
	proof := &onchaindb.PaymentProof{
		PaymentTxHash: c.PostForm("payment_tx_hash"),
		UserAddress:   c.PostForm("user_address"),
		BrokerAddress: c.PostForm("broker_address"),
	}
	if v := c.PostForm("amount_utia"); v != "" {
		if amount, err := strconv.ParseInt(v, 10, 64); err == nil {
			proof.AmountUtia = amount
		}
	}

	if err := s.quoteOrProceed(
		ctx,
		collImages,
		sizeKb,
		proof,
		fmt.Sprintf("Upload image (%dKB)", sizeKb),
	); err != nil {
		return nil, err
	}

	receipt, err := s.db.StoreBlob(
		ctx,
		collImages,
		data,
		file.Filename,
		contentType,
		proof,
	)
	if err != nil {
		return nil, err
	}

	stored := struct {
		BlobID string `json:"blob_id"`
	}{}
	if err := json.Unmarshal(receipt, &stored); err != nil {
		return nil, errors.Wrap(err, "decode blob receipt")
	}

	return &uploadBlobResp{
		BlobID:      stored.BlobID,
		BlobURL:     "/api/blobs/" + stored.BlobID,
		SizeBytes:   len(data),
		Size:        units.HumanSize(float64(len(data))),
		ContentType: contentType,
	}, nil
}

// Blob handles the GET /blobs/:blob_id request, streaming the stored
// bytes with their original content type.
func (s *Service) Blob(c *gin.Context) error {
	id := c.Param("blob_id")
	if id == "" {
		return errMissingBlobID
	}

	data, contentType, err := s.db.FetchBlob(
		c.Request.Context(),
		collImages,
		id,
	)
	if err != nil {
		if errors.Is(err, onchaindb.ErrNotFound) {
			return errBlobNotFound
		}

		return err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Data(http.StatusOK, contentType, data)
	return nil
}

// BlobPricing handles the /pricing/blobs request.
func (s *Service) BlobPricing(c *gin.Context) (*pricingResp, error) {
	sizeKb, err := strconv.Atoi(c.DefaultQuery("size_kb", "100"))
	if err != nil || sizeKb < 1 {
		sizeKb = 100
	}

	quote, err := s.db.PricingQuote(
		c.Request.Context(),
		collImages,
		"write",
		sizeKb,
	)
	if err != nil {
		return nil, err
	}

	costTia := quote.CostTia()
	return &pricingResp{
		SizeKb:        sizeKb,
		AmountUtia:    int64(costTia * utiaPerTia),
		AmountTia:     costTia,
		BrokerAddress: s.cfg.Celestia.BrokerAddress,
	}, nil
}
