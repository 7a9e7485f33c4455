package tle

import (
	"io"
	"log/slog"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

const (
	issLine1 = "1 25544U 98067A   25025.00048859  .00033214  00000+0  57704-3 0  9996"
	issLine2 = "2 25544  51.6377 296.2827 0003104 141.8447 313.9175 15.50506992492954"

	starlinkLine1 = "1 44713U 19074A   25025.50000000  .00001000  00000+0  10000-4 0  9994"
	starlinkLine2 = "2 44713  53.0000 200.0000 0001500  90.0000 270.0000 15.06000000 99993"

	issSet      = "ISS (ZARYA)\n" + issLine1 + "\n" + issLine2 + "\n"
	starlinkSet = "STARLINK-1007\n" + starlinkLine1 + "\n" + starlinkLine2 + "\n"
)
