package browser

// launchArgs keep Chromium from advertising itself as automated.
var launchArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--no-default-browser-check",
	"--no-first-run",
}

// stealthScript runs before any page script in every frame of the context.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
window.chrome = window.chrome || { runtime: {} };
`

const scrollScript = `() => { window.scrollTo(0, document.body.scrollHeight); return document.body.scrollHeight; }`
