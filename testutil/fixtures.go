package testutil

// TwoTurnMarkup is a minimal exported conversation with one user and
// one assistant turn, used across extraction and sync tests.
const TwoTurnMarkup = `<html><body>
<div data-message-author-role="user" data-message-id="m1"><p>Hi</p></div>
<div data-message-author-role="assistant" data-message-id="m2"><p>Hello</p></div>
</body></html>`

// RichMarkup exercises block separation, explicit line breaks, and a
// turn without a message identifier.
const RichMarkup = `<html><body>
<article data-message-author-role="user" data-message-id="q1">
  <p>First   paragraph</p>
  <p>Second paragraph<br>with a break</p>
</article>
<article data-message-author-role="assistant">
  <ul><li>one</li><li>two</li></ul>
</article>
</body></html>`
