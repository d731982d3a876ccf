package browser

import (
	"context"
	"encoding/json"

	"github.com/vpetrenko/formfill-agent/internal/page"
)

// Snapshot runs the collector script and decodes its result. The script does
// all the DOM walking in one evaluation so discovery strategies can stay
// pure Go over the structured output.
func (s *Session) Snapshot(ctx context.Context) (*page.Snapshot, error) {
	val, err := s.Evaluate(ctx, collectorScript, 400)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	var snap page.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	snap.URL = s.page.URL()
	if title, err := s.page.Title(); err == nil {
		snap.Title = title
	}
	return &snap, nil
}

const collectorScript = `(limit) => {
	function cssPath(el) {
		if (!el || el === document.body) return "body";
		if (el.id) return el.tagName.toLowerCase() + "#" + CSS.escape(el.id);
		const parts = [];
		let node = el;
		while (node && node !== document.body && parts.length < 8) {
			if (node.id) {
				parts.unshift(node.tagName.toLowerCase() + "#" + CSS.escape(node.id));
				break;
			}
			const tag = node.tagName.toLowerCase();
			const siblings = Array.from(node.parentElement ? node.parentElement.children : [])
				.filter(c => c.tagName === node.tagName);
			const idx = siblings.indexOf(node) + 1;
			parts.unshift(siblings.length > 1 ? tag + ":nth-of-type(" + idx + ")" : tag);
			node = node.parentElement;
		}
		return parts.join(" > ");
	}

	function ownText(el, max) {
		const t = (el.innerText || el.textContent || "").trim().replace(/\s+/g, " ");
		return t.slice(0, max || 120);
	}

	function isVisible(el) {
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 && rect.height === 0) return false;
		const style = window.getComputedStyle(el);
		return style.visibility !== "hidden" && style.display !== "none";
	}

	// Uniform per-question wrappers (survey builders repeat one per question).
	const containerEls = [];
	for (const sel of ["div[role='listitem']", "[data-question]", "[class*='question-container']"]) {
		const found = document.querySelectorAll(sel);
		if (found.length > 1) {
			for (const el of found) containerEls.push(el);
			break;
		}
	}
	const containers = containerEls.map(el => {
		let heading = "";
		const h = el.querySelector("[role='heading'], h1, h2, h3, h4, h5, h6, legend, [class*='title']");
		if (h) heading = ownText(h, 200);
		return { selector: cssPath(el), heading: heading };
	});

	const controlQuery = "input, textarea, select, [contenteditable='true'], " +
		"[role='radio'], [role='checkbox'], [role='listbox'], [role='combobox']";
	const nodes = [];
	for (const el of document.querySelectorAll(controlQuery)) {
		if (nodes.length >= limit) break;
		const tag = el.tagName.toLowerCase();
		const type = (el.getAttribute("type") || "").toLowerCase();
		if (tag === "input" && (type === "submit" || type === "button" || type === "reset")) continue;

		let labelText = "", labelSelector = "";
		if (el.id) {
			const lab = document.querySelector("label[for=\"" + CSS.escape(el.id) + "\"]");
			if (lab) { labelText = ownText(lab, 200); labelSelector = cssPath(lab); }
		}

		let legendText = "", fieldsetSelector = "";
		const fs = el.closest("fieldset");
		if (fs) {
			fieldsetSelector = cssPath(fs);
			const lg = fs.querySelector("legend");
			if (lg) legendText = ownText(lg, 200);
		}

		// Two-column layouts: the label sits in a sibling preceding the
		// field's wrapper column.
		let wrapText = "";
		const wrapper = el.closest("[class*='form-group'], [class*='field-wrapper'], [class*='form-row'], [class*='form-field']");
		if (wrapper) {
			const lab = wrapper.querySelector("label, [class*='label']");
			if (lab && !lab.contains(el)) wrapText = ownText(lab, 200);
			if (!wrapText) {
				const prev = wrapper.previousElementSibling;
				if (prev && prev.tagName === "LABEL") wrapText = ownText(prev, 200);
			}
		}

		let precedingLabel = "";
		const parent = el.parentElement;
		if (parent && parent.previousElementSibling && parent.previousElementSibling.tagName === "LABEL") {
			precedingLabel = ownText(parent.previousElementSibling, 200);
		}

		let container = -1;
		for (let i = 0; i < containerEls.length; i++) {
			if (containerEls[i].contains(el)) { container = i; break; }
		}

		let widgetSelector = "";
		const widgetWrap = el.closest("[class*='control'], [class*='-container'], [class*='picker'], [class*='autocomplete']");
		if (widgetWrap && widgetWrap !== el) widgetSelector = cssPath(widgetWrap);

		const options = [];
		if (tag === "select") {
			const base = cssPath(el);
			for (let i = 0; i < el.options.length; i++) {
				const o = el.options[i];
				options.push({
					value: o.value,
					label: (o.label || o.textContent || "").trim(),
					selector: base + " option:nth-of-type(" + (i + 1) + ")"
				});
			}
		}

		nodes.push({
			selector: cssPath(el),
			tag: tag,
			type: type,
			role: el.getAttribute("role") || "",
			id: el.id || "",
			name: el.getAttribute("name") || "",
			class: el.className && el.className.toString ? el.className.toString() : "",
			placeholder: el.getAttribute("placeholder") || "",
			ariaLabel: el.getAttribute("aria-label") || "",
			value: el.value !== undefined ? String(el.value) : (el.getAttribute("data-value") || ""),
			text: ownText(el, 120),
			labelText: labelText,
			labelSelector: labelSelector,
			legendText: legendText,
			wrapText: wrapText,
			precedingLabel: precedingLabel,
			fieldsetSelector: fieldsetSelector,
			container: container,
			widgetSelector: widgetSelector,
			visible: isVisible(el),
			required: el.required === true || el.getAttribute("aria-required") === "true",
			disabled: el.disabled === true || el.getAttribute("aria-disabled") === "true",
			readOnly: el.readOnly === true,
			editable: el.getAttribute("contenteditable") === "true",
			multiline: tag === "textarea",
			options: options
		});
	}

	return { containers: containers, nodes: nodes };
}`
