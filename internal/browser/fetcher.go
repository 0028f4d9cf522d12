package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"balanca/internal/model"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.224 Safari/537.36"

type Options struct {
	MaxAttempts int
	RetryDelay  time.Duration
	WaitTimeout time.Duration
	SettleDelay time.Duration
	UserAgent   string
	ChromePath  string
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts: 3,
		RetryDelay:  5 * time.Second,
		WaitTimeout: 30 * time.Second,
		SettleDelay: 10 * time.Second,
		UserAgent:   defaultUserAgent,
	}
}

// ChromeFetcher carrega a página num Chrome headless e devolve o HTML
// renderizado. Cada tentativa abre e fecha a sua própria sessão.
type ChromeFetcher struct {
	Opts Options

	// attempt permite trocar a sessão real do navegador nos testes
	attempt func(ctx context.Context, url string) (string, error)
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewChromeFetcher(opts Options) *ChromeFetcher {
	f := &ChromeFetcher{Opts: opts, sleep: sleepCtx}
	f.attempt = f.load
	return f
}

// Fetch tenta até MaxAttempts vezes, esperando RetryDelay entre tentativas.
// Só falhas de navegador/carregamento são repetidas.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	attempts := f.Opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		html, err := f.attempt(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err
		log.Printf("[Browser] Erro ao acessar a página na tentativa %d/%d: %v", i, attempts, err)

		if !model.Retryable(err) || i == attempts {
			break
		}
		if ctx.Err() == nil {
			err = f.sleep(ctx, f.Opts.RetryDelay)
		} else {
			err = ctx.Err()
		}
		if err != nil {
			return "", &model.StageError{
				Stage: model.StageFetch,
				Err:   fmt.Errorf("busca interrompida após %d tentativa(s): %w (último erro: %v)", i, err, lastErr),
			}
		}
	}

	return "", &model.StageError{
		Stage: model.StageFetch,
		Err:   fmt.Errorf("%d tentativa(s) esgotadas para %s: %w", attempts, url, lastErr),
	}
}

// sleepCtx espera d ou até o contexto ser cancelado.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (f *ChromeFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	ua := f.Opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "pt-BR,pt;q=0.9,en-US;q=0.8"),
		chromedp.UserAgent(ua),
	)
	if f.Opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(f.Opts.ChromePath))
	}
	return opts
}

// load executa uma tentativa: sobe o navegador, navega, espera por uma
// <table>, aguarda o conteúdo assíncrono e lê o HTML. Os cancels fecham o
// navegador em todos os caminhos de saída.
func (f *ChromeFetcher) load(ctx context.Context, url string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// Sobe o navegador antes da navegação para separar falha de driver de falha de página
	if err := chromedp.Run(browserCtx); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrDriverInit, err)
	}

	timeout := f.Opts.WaitTimeout
	if timeout <= 0 {
		timeout = DefaultOptions().WaitTimeout
	}
	waitCtx, cancelWait := context.WithTimeout(browserCtx, timeout)
	defer cancelWait()

	err := chromedp.Run(waitCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("table", chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: nenhuma tabela apareceu em %s: %v", model.ErrPageLoad, timeout, err)
		}
		return "", fmt.Errorf("%w: %v", model.ErrPageLoad, err)
	}

	var html string
	err = chromedp.Run(browserCtx,
		chromedp.Sleep(f.Opts.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: erro ao ler o HTML: %v", model.ErrPageLoad, err)
	}
	return html, nil
}
