package omml

// latexSpecial are characters escaped with a backslash inside runs.
const latexSpecial = `{}_^#&$%~`

var symbols = map[rune]string{
	'α': `\alpha `, 'β': `\beta `, 'γ': `\gamma `, 'δ': `\delta `, 'ε': `\epsilon `,
	'ζ': `\zeta `, 'η': `\eta `, 'θ': `\theta `, 'ι': `\iota `, 'κ': `\kappa `,
	'λ': `\lambda `, 'μ': `\mu `, 'ν': `\nu `, 'ξ': `\xi `, 'π': `\pi `,
	'ρ': `\rho `, 'σ': `\sigma `, 'τ': `\tau `, 'υ': `\upsilon `, 'φ': `\phi `,
	'χ': `\chi `, 'ψ': `\psi `, 'ω': `\omega `,
	'Γ': `\Gamma `, 'Δ': `\Delta `, 'Θ': `\Theta `, 'Λ': `\Lambda `, 'Π': `\Pi `,
	'Σ': `\Sigma `, 'Φ': `\Phi `, 'Ψ': `\Psi `, 'Ω': `\Omega `,

	'\U0001d6fc': `\alpha `, '\U0001d6fd': `\beta `, '\U0001d6fe': `\gamma `, '\U0001d6ff': `\delta `,
	'\U0001d700': `\epsilon `, '\U0001d703': `\theta `, '\U0001d706': `\lambda `, '\U0001d707': `\mu `,
	'\U0001d70b': `\pi `, '\U0001d70e': `\sigma `, '\U0001d711': `\phi `, '\U0001d714': `\omega `,
	'\U0001d715': `\partial `,

	'→': `\rightarrow `, '←': `\leftarrow `, '↔': `\leftrightarrow `, '⇒': `\Rightarrow `,
	'⇔': `\Leftrightarrow `, '↑': `\uparrow `, '↓': `\downarrow `,
	'≠': `\ne `, '≤': `\leq `, '≥': `\geq `, '≈': `\approx `, '≡': `\equiv `,
	'≪': `\ll `, '≫': `\gg `, '∝': `\propto `, '∼': `\sim `,
	'∈': `\in `, '∉': `\notin `, '∋': `\ni `, '⊂': `\subset `, '⊆': `\subseteq `,
	'∪': `\cup `, '∩': `\cap `, '∅': `\emptyset `, '∀': `\forall `, '∃': `\exists `,
	'∞': `\infty `, '∂': `\partial `, '∇': `\nabla `, '±': `\pm `, '∓': `\mp `,
	'×': `\times `, '÷': `\div `, '⋅': `\cdot `, '·': `\cdot `, '∘': `\circ `,
	'⋯': `\cdots `, '…': `\ldots `, '⋮': `\vdots `, '⋱': `\ddots `,
}

var accents = map[string]string{
	"\u0300": `\grave`, "\u0301": `\acute`, "\u0302": `\hat`, "\u0303": `\tilde`,
	"\u0304": `\bar`, "\u0305": `\overline`, "\u0306": `\breve`, "\u0307": `\dot`,
	"\u0308": `\ddot`, "\u030c": `\check`, "\u20d7": `\vec`, "\u20db": `\dddot`,
	"\u20d6": `\overleftarrow`, "\u20e1": `\overleftrightarrow`, "\u0331": `\underline`,
	"⏞": `\overbrace`, "⏟": `\underbrace`,
	"⏜": `\overparen`, "⏝": `\underparen`,
}

var operators = map[string]string{
	"∑": `\sum`, "∏": `\prod`, "∐": `\coprod`,
	"∫": `\int`, "∬": `\iint`, "∭": `\iiint`, "∮": `\oint`,
	"⋀": `\bigwedge`, "⋁": `\bigvee`, "⋂": `\bigcap`, "⋃": `\bigcup`,
	"⨀": `\bigodot`, "⨁": `\bigoplus`, "⨂": `\bigotimes`,
}

var fences = map[string]string{
	"⟨": `\langle `, "⟩": `\rangle `, "‖": `\|`, "⌈": `\lceil `, "⌉": `\rceil `,
	"⌊": `\lfloor `, "⌋": `\rfloor `,
}

var functionNames = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"arcsin": true, "arccos": true, "arctan": true,
	"sinh": true, "cosh": true, "tanh": true, "coth": true,
	"log": true, "ln": true, "exp": true, "det": true,
}

// mathAlphanumeric folds the italic Latin block of Mathematical Alphanumeric
// Symbols back to ASCII.
func mathAlphanumeric(r rune) rune {
	switch {
	case r >= 0x1d434 && r <= 0x1d44d:
		return 'A' + (r - 0x1d434)
	case r >= 0x1d44e && r <= 0x1d467:
		return 'a' + (r - 0x1d44e)
	case r == 0x210e: // planck constant, the italic h
		return 'h'
	}
	return r
}
