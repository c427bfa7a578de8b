package internal

import (
	"time"

	"sanctuary/infrastructure/ws"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`
	GRPCPort int    `env:"GRPC_PORT,default=9090"`
	LogLevel string `env:"LOG_LEVEL,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	JWTSecret      string `env:"JWT_SECRET,required=true"`
	JWTIssuer      string `env:"JWT_ISSUER,default=sanctuary"`
	AdminKeyHash   string `env:"ADMIN_KEY_HASH"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL,required=true"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	MaxFrameBytes        int           `env:"MAX_FRAME_BYTES,default=65536"`
	MaxFramesPerSecond   int           `env:"MAX_FRAMES_PER_SECOND,default=40"`
	MaxDecodeErrors      int           `env:"MAX_DECODE_ERRORS,default=3"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`

	MetricInterval   time.Duration `env:"METRIC_INTERVAL,default=15s"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=1s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	RoomSizeWarning  int           `env:"ROOM_SIZE_WARNING,default=500"`
	TelemetryBuffer  int           `env:"TELEMETRY_BUFFER,default=64"`
	DebugInspectPort int           `env:"DEBUG_INSPECT_PORT,default=8081"`
}

func (c Config) Limits() ws.Limits {
	return ws.Limits{
		MaxFrameBytes:      c.MaxFrameBytes,
		MaxFramesPerSecond: c.MaxFramesPerSecond,
		MaxDecodeErrors:    c.MaxDecodeErrors,
		BufferSize:         c.ConnectionBufferSize,
		WriteTimeout:       c.WriteTimeout,
	}
}
