package client

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"orchid-shop/internal/config"
)

const momoRequestType = "captureWallet"

var ErrMissingPayURL = errors.New("momo response has no payUrl")

type MomoClient interface {
	CreatePayment(ctx context.Context, p MomoPayment) (*MomoCreateResult, error)
}

// MomoPayment holds the per-order fields; credentials and callback URLs come from config.
type MomoPayment struct {
	OrderID   string // gateway order id, unique per attempt
	RequestID string
	Amount    int64
	OrderInfo string // domain order id
	ExtraData string
}

type MomoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
	Lang        string `json:"lang"`
}

type MomoCreateResult struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
	PayURL      string `json:"payUrl"`
}

type momoClientImpl struct {
	httpClient *http.Client
	cfg        config.Momo
}

func NewMomoClient(momoCfg config.Momo) MomoClient {
	return &momoClientImpl{
		httpClient: &http.Client{
			Timeout: momoCfg.Timeout,
		},
		cfg: momoCfg,
	}
}

// MomoRawSignature builds the string the gateway signs. Keys are in the
// gateway's fixed alphabetical order and values are not escaped.
func MomoRawSignature(r *MomoCreateRequest) string {
	return "accessKey=" + r.AccessKey +
		"&amount=" + strconv.FormatInt(r.Amount, 10) +
		"&extraData=" + r.ExtraData +
		"&ipnUrl=" + r.IpnURL +
		"&orderId=" + r.OrderID +
		"&orderInfo=" + r.OrderInfo +
		"&partnerCode=" + r.PartnerCode +
		"&redirectUrl=" + r.RedirectURL +
		"&requestId=" + r.RequestID +
		"&requestType=" + r.RequestType
}

// SignHMACSHA256 returns the lowercase hex HMAC-SHA256 of data.
func SignHMACSHA256(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *momoClientImpl) buildRequest(p MomoPayment) *MomoCreateRequest {
	req := &MomoCreateRequest{
		PartnerCode: c.cfg.PartnerCode,
		AccessKey:   c.cfg.AccessKey,
		RequestID:   p.RequestID,
		Amount:      p.Amount,
		OrderID:     p.OrderID,
		OrderInfo:   p.OrderInfo,
		RedirectURL: c.cfg.RedirectURL,
		IpnURL:      c.cfg.IpnURL,
		ExtraData:   p.ExtraData,
		RequestType: momoRequestType,
		Lang:        c.cfg.Lang,
	}
	req.Signature = SignHMACSHA256(c.cfg.SecretKey, MomoRawSignature(req))
	return req
}

func (c *momoClientImpl) CreatePayment(ctx context.Context, p MomoPayment) (*MomoCreateResult, error) {
	body, err := json.Marshal(c.buildRequest(p))
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("momo create request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("momo error %d: %s", resp.StatusCode, string(b))
	}

	var result MomoCreateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode momo response: %w", err)
	}
	if result.PayURL == "" {
		return nil, fmt.Errorf("%w (resultCode=%d message=%q)", ErrMissingPayURL, result.ResultCode, result.Message)
	}

	return &result, nil
}
