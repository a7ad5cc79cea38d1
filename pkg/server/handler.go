package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/go-kit/log/level"
	"github.com/labstack/echo"
	"github.com/nearzap/nearzap/pkg/transformer"
	"github.com/nearzap/nearzap/pkg/zapier"
	"github.com/pkg/errors"
)

func (s *Server) operationHandler(kind transformer.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Param("key")
		label := key
		if !s.transformer.Registered(kind, key) {
			label = unregisteredKey
		}

		start := time.Now()
		result, zerr := s.perform(c, kind, key)
		s.metrics.observe(kind, label, zerr, time.Since(start))
		s.zapierRequestAnalytics.Record(zerr == nil || zerr.Kind != zapier.KindUnknown)

		if zerr != nil {
			if zerr.Kind != zapier.KindInvalidData {
				level.Error(s.logger).Log("msg", "operation failed", "kind", kind, "operation", key, "error", zerr)
			}
			return c.JSON(zerr.Code, zerr)
		}

		return c.JSON(http.StatusOK, result)
	}
}

func (s *Server) perform(c echo.Context, kind transformer.Kind, key string) (interface{}, *zapier.Error) {
	bundle, err := readBundle(c.Request())
	if err != nil {
		return nil, zapier.NewInvalidDataErrorf("Invalid bundle: %s", errors.Cause(err).Error())
	}
	return s.transformer.Perform(c.Request().Context(), kind, key, bundle)
}

// readBundle decodes the request body. An empty body is an empty bundle.
func readBundle(r *http.Request) (*zapier.Bundle, error) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read request body")
	}

	bundle := &zapier.Bundle{}
	if len(bytes.TrimSpace(body)) == 0 {
		return bundle, nil
	}
	if err := json.Unmarshal(body, bundle); err != nil {
		return nil, errors.Wrap(err, "couldn't decode request body")
	}
	return bundle, nil
}

func (s *Server) operationsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.transformer.Operations())
}

// errorHandler answers routing failures with the same shape as operation errors.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var zerr *zapier.Error
	if he, ok := err.(*echo.HTTPError); ok {
		zerr = &zapier.Error{
			Message: fmt.Sprint(he.Message),
			Kind:    zapier.KindInvalidData,
			Code:    he.Code,
		}
	} else {
		zerr = zapier.Classify(err)
		level.Error(s.logger).Log("msg", "request failed", "path", c.Path(), "error", err)
	}

	if err := c.JSON(zerr.Code, zerr); err != nil {
		s.logger.Log("msg", "couldn't write error response", "error", err)
	}
}

// requestLogger logs every request in debug mode. Bodies carry keys and are never logged.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		level.Debug(s.logger).Log(
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"took", time.Since(start),
		)
		return err
	}
}
