package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/jhoicas/facturas-api/internal/domain"
)

const (
	// DefaultLoadTimeout carga del documento hasta red inactiva.
	DefaultLoadTimeout = 30 * time.Second
	networkIdle        = 500 * time.Millisecond

	// A4 en pulgadas y márgenes de 10 mm.
	a4Width  = 8.27
	a4Height = 11.69
	marginIn = 0.3937
)

// LaunchProfile parámetros de arranque de Chromium. Se fija al construir el motor.
type LaunchProfile struct {
	Name      string
	Bin       string // vacío: rod descarga y gestiona su propio navegador
	NoSandbox bool
	Leakless  bool
	Flags     map[flags.Flag]string // valor vacío: flag sin argumento
}

// ProductionProfile binario explícito y flags para contenedores sin sandbox ni /dev/shm amplio.
func ProductionProfile(bin string) LaunchProfile {
	return LaunchProfile{
		Name:      "production",
		Bin:       bin,
		NoSandbox: true,
		Leakless:  false,
		Flags: map[flags.Flag]string{
			"disable-dev-shm-usage": "",
			"disable-gpu":           "",
			"disable-extensions":    "",
			"font-render-hinting":   "none",
		},
	}
}

// DevelopmentProfile usa el Chrome/Chromium local si existe; si no, el gestionado por rod.
func DevelopmentProfile() LaunchProfile {
	bin, _ := launcher.LookPath()
	return LaunchProfile{
		Name:     "development",
		Bin:      bin,
		Leakless: true,
	}
}

func (p LaunchProfile) launcher(ctx context.Context) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(p.NoSandbox).
		Leakless(p.Leakless)
	if p.Bin != "" {
		l = l.Bin(p.Bin)
	}
	for f, v := range p.Flags {
		if v == "" {
			l = l.Set(f)
			continue
		}
		l = l.Set(f, v)
	}
	return l
}

// RodEngine motor HTML→PDF con Chromium headless. Un navegador nuevo por render.
type RodEngine struct {
	profile     LaunchProfile
	loadTimeout time.Duration
	log         zerolog.Logger
}

// RodOption opción funcional de RodEngine.
type RodOption func(*RodEngine)

// WithLoadTimeout reemplaza el plazo de carga del documento.
func WithLoadTimeout(d time.Duration) RodOption {
	return func(e *RodEngine) {
		if d > 0 {
			e.loadTimeout = d
		}
	}
}

// WithEngineLogger asigna el logger del motor.
func WithEngineLogger(log zerolog.Logger) RodOption {
	return func(e *RodEngine) { e.log = log }
}

// NewRodEngine construye el motor con el perfil indicado.
func NewRodEngine(profile LaunchProfile, opts ...RodOption) *RodEngine {
	e := &RodEngine{profile: profile, loadTimeout: DefaultLoadTimeout, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Profile perfil activo (para el log de arranque).
func (e *RodEngine) Profile() LaunchProfile { return e.profile }

// PrintPDF lanza Chromium, carga doc, espera red inactiva e imprime A4.
// El navegador se cierra y su proceso se mata en todos los caminos de salida.
func (e *RodEngine) PrintPDF(ctx context.Context, doc HTMLDocument) ([]byte, error) {
	// ── 1. Lanzar navegador ───────────────────────────────────────────────────
	l := e.profile.launcher(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		// sin proceso arrancado Cleanup esperaría para siempre: solo se borra el perfil
		_ = os.RemoveAll(l.Get(flags.UserDataDir))
		return nil, fmt.Errorf("%w: %w: lanzar navegador (%s): %w", domain.ErrRenderFailed, domain.ErrRenderUnavailable, e.profile.Name, err)
	}
	defer func() {
		l.Kill()
		l.Cleanup()
	}()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %w: conectar navegador: %w", domain.ErrRenderFailed, domain.ErrRenderUnavailable, err)
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			e.log.Debug().Err(cerr).Msg("cerrar navegador")
		}
	}()

	// ── 2. Cargar documento ───────────────────────────────────────────────────
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: abrir página: %w", domain.ErrRenderFailed, err)
	}
	if err := e.load(page, doc.Body); err != nil {
		return nil, fmt.Errorf("%w: cargar documento: %w", domain.ErrRenderFailed, err)
	}

	// ── 3. Imprimir ───────────────────────────────────────────────────────────
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:     true,
		PaperWidth:          ptr(a4Width),
		PaperHeight:         ptr(a4Height),
		MarginTop:           ptr(marginIn),
		MarginBottom:        ptr(marginIn),
		MarginLeft:          ptr(marginIn),
		MarginRight:         ptr(marginIn),
		DisplayHeaderFooter: doc.Footer != "",
		HeaderTemplate:      "<span></span>",
		FooterTemplate:      doc.Footer,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: imprimir: %w", domain.ErrRenderFailed, err)
	}
	buf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: leer PDF: %w", domain.ErrRenderFailed, err)
	}
	return buf, nil
}

func (e *RodEngine) load(page *rod.Page, html string) error {
	loading := page.Timeout(e.loadTimeout)
	defer loading.CancelTimeout()

	wait := loading.WaitRequestIdle(networkIdle, nil, nil, nil)
	if err := loading.SetDocumentContent(html); err != nil {
		return err
	}
	wait()
	return loading.WaitLoad()
}

func ptr[T any](v T) *T { return &v }
