package models

import (
	"net"
	"net/url"
	"strconv"
)

// Endpoint locates the dedicated prediction service of one asset.
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// BaseURL returns the scheme+authority of the endpoint, e.g. http://localhost:5474.
func (e Endpoint) BaseURL() string {
	u := url.URL{Scheme: "http", Host: net.JoinHostPort(e.Host, strconv.Itoa(e.Port))}
	return u.String()
}

// Asset is a supported cryptocurrency.
type Asset struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Endpoint Endpoint `json:"endpoint"`
}

// Timeframe is a forecast horizon.
type Timeframe struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Days  int    `json:"days"`
}
