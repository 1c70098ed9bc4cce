package images

import (
	"encoding/base64"
	"fmt"
)

const gaugeSVG = `<svg xmlns='http://www.w3.org/2000/svg' width='%[1]d' height='%[2]d' viewBox='0 0 %[1]d %[2]d'>
<defs>
<radialGradient id='dashGrad' cx='50%%' cy='50%%' r='50%%'>
<stop offset='0%%' style='stop-color:#2a2a2a;stop-opacity:1' />
<stop offset='100%%' style='stop-color:#0f0f0f;stop-opacity:1' />
</radialGradient>
<linearGradient id='needleGrad' x1='0%%' y1='0%%' x2='100%%' y2='100%%'>
<stop offset='0%%' style='stop-color:#ffffff;stop-opacity:0.8' />
<stop offset='100%%' style='stop-color:#cccccc;stop-opacity:0.6' />
</linearGradient>
</defs>
<rect width='100%%' height='100%%' fill='url(#dashGrad)' rx='12'/>
<circle cx='%[3]d' cy='%[4]d' r='%[5]d' fill='none' stroke='#333' stroke-width='2'/>
<circle cx='%[3]d' cy='%[4]d' r='%[6]d' fill='none' stroke='#444' stroke-width='1'/>
<line x1='%[3]d' y1='%[4]d' x2='%[7]d' y2='%[8]d' stroke='url(#needleGrad)' stroke-width='3' stroke-linecap='round'/>
<circle cx='%[3]d' cy='%[4]d' r='4' fill='url(#needleGrad)'/>
<text x='%[3]d' y='%[9]d' text-anchor='middle' fill='#888' font-family='Arial' font-size='10' font-weight='bold'>FUEL</text>
</svg>`

// FallbackSVG renders a dark fuel gauge of the given size.
func FallbackSVG(width, height int) string {
	cx, cy := width/2, height/2
	return fmt.Sprintf(gaugeSVG,
		width, height,
		cx, cy,
		width/3, width/4,
		cx+width/4, cy-height/8,
		height-15,
	)
}

// Fallback returns the gauge SVG as an inline image.
func Fallback(width, height int) Image {
	return Image{
		MIME:    MIMESVG,
		Data:    base64.StdEncoding.EncodeToString([]byte(FallbackSVG(width, height))),
		Outcome: OutcomeFallback,
	}
}
