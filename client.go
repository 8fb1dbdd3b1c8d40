package main

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
)

// ===============================
// HTTP 客户端
// ===============================

// newClient 按配置的协议版本创建客户端
// 新旧两侧使用同一种协议，保证对比只反映网关本身的开销
func newClient(protocol Protocol, timeout time.Duration) *http.Client {
	switch protocol {
	case HTTP3:
		return createHTTP3Client(timeout)
	case HTTP2:
		return createHTTP2Client(timeout)
	default:
		return createHTTP1Client(timeout)
	}
}

// 创建 HTTP/1.1 客户端
func createHTTP1Client(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: false,
			// 强制使用 HTTP/1.1，不进行 HTTP/2 ALPN 协商
			NextProtos: []string{"http/1.1"},
		},
		// 禁用 HTTP/2
		ForceAttemptHTTP2:   false,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// 创建 HTTP/2 客户端（强制使用HTTP/2）
func createHTTP2Client(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: false,
			// 强制使用HTTP/2的ALPN
			NextProtos: []string{"h2"},
		},
		// 强制启用HTTP/2
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// 创建 HTTP/3 客户端
func createHTTP3Client(timeout time.Duration) *http.Client {
	transport := &http3.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: false,
		},
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
