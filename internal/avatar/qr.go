package avatar

import (
	"encoding/base64"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/skip2/go-qrcode"
)

// ShareQR generates a base64 PNG QR code of the address. Users exchange these
// to send friend requests without typing 40 hex digits.
func ShareQR(addr common.Address) (string, error) {
	qr, err := qrcode.New(addr.Hex(), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
