package decoder

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/replay"
	"github.com/riskibarqy/overmind/internal/platform/logging"
	"github.com/riskibarqy/overmind/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const DefaultCommand = "sc2decode"

// Runner executes the decoder with args and returns its stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

type Config struct {
	// Command is split on whitespace; the first field is the executable.
	Command string
	Logger  *logging.Logger
	Runner  Runner
}

// Decoder shells out to an external replay decoder that prints JSON.
type Decoder struct {
	run      Runner
	validate *validator.Validate
	logger   *logging.Logger
}

var _ usecase.ReplayDecoder = (*Decoder)(nil)

func New(cfg Config) *Decoder {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	run := cfg.Runner
	if run == nil {
		run = ExecRunner(cfg.Command)
	}
	return &Decoder{
		run:      run,
		validate: validator.New(),
		logger:   logger,
	}
}

// ExecRunner runs command as a child process bound to ctx.
func ExecRunner(command string) Runner {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{DefaultCommand}
	}
	return func(ctx context.Context, args ...string) ([]byte, error) {
		cmd := exec.CommandContext(ctx, fields[0], append(append([]string(nil), fields[1:]...), args...)...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, crerr.Wrapf(err, "%s: %s", fields[0], abbreviate(msg))
			}
			return nil, crerr.Wrapf(err, "%s", fields[0])
		}
		return stdout.Bytes(), nil
	}
}

func (d *Decoder) Decode(ctx context.Context, path string, level usecase.LoadLevel) (replay.Decoded, error) {
	hash, err := fileDigest(path)
	if err != nil {
		return replay.Decoded{}, markDecode(err, "hash %s", path)
	}

	out, err := d.run(ctx, "--load-level", strconv.Itoa(int(level)), path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return replay.Decoded{}, ctxErr
		}
		return replay.Decoded{}, markDecode(err, "decode %s", path)
	}

	var payload replayPayload
	if err := sonic.Unmarshal(out, &payload); err != nil {
		return replay.Decoded{}, markDecode(err, "parse decoder output for %s", path)
	}
	if err := d.validate.StructCtx(ctx, payload); err != nil {
		return replay.Decoded{}, markDecode(err, "invalid decoder output for %s", path)
	}
	mapHash, err := digest.FromHex(payload.MapHash)
	if err != nil {
		return replay.Decoded{}, markDecode(err, "map hash for %s", path)
	}

	decoded := payload.toDomain(hash, mapHash)
	d.logger.DebugContext(ctx, "replay decoded",
		"path", path,
		"hash", hash.Hex(),
		"game_type", decoded.GameType,
		"participants", len(decoded.Participants),
	)
	return decoded, nil
}

// LoadMap decodes the map asset referenced by an already decoded replay.
func (d *Decoder) LoadMap(ctx context.Context, path string, decoded replay.Decoded) (gamemap.Record, error) {
	out, err := d.run(ctx, "--map", path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return gamemap.Record{}, ctxErr
		}
		return gamemap.Record{}, markDecode(err, "load map for %s", path)
	}

	var payload mapPayload
	if err := sonic.Unmarshal(out, &payload); err != nil {
		return gamemap.Record{}, markDecode(err, "parse map output for %s", path)
	}
	if err := d.validate.StructCtx(ctx, payload); err != nil {
		return gamemap.Record{}, markDecode(err, "invalid map output for %s", path)
	}

	hash := decoded.MapHash
	if payload.Hash != "" {
		parsed, err := digest.FromHex(payload.Hash)
		if err != nil {
			return gamemap.Record{}, markDecode(err, "map hash for %s", path)
		}
		hash = parsed
	}
	return payload.toDomain(hash), nil
}

// fileDigest hashes the replay bytes in-process.
func fileDigest(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return digest.Digest{}, err
	}
	defer f.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(f); err != nil {
		return digest.Digest{}, err
	}
	return digest.Sum(buf.B), nil
}

func markDecode(err error, format string, args ...any) error {
	return crerr.Mark(crerr.Wrapf(err, format, args...), usecase.ErrDecode)
}

func abbreviate(text string) string {
	const limit = 512
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
