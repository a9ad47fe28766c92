package console

import (
	"encoding/base64"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// RoomURL is the console address encoded into a room's QR code.
func RoomURL(baseURL, roomID string) string {
	return baseURL + "/rooms?room=" + url.QueryEscape(roomID)
}

// QRPNG encodes content as a PNG QR code.
func QRPNG(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, qrSize)
}

// QRDataURI returns content's QR code as an inline image source.
func QRDataURI(content string) (string, error) {
	png, err := QRPNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
