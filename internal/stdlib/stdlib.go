package stdlib

// Prelude is included first by every C translation. The mc_* helpers give
// i32 arithmetic and conversions the same meaning the interpreter gives
// them: wrapping arithmetic, saturating float-to-int, and a diagnosed
// division by zero instead of undefined behaviour.
const Prelude = `#include <errno.h>
#include <inttypes.h>
#include <math.h>
#include <stdint.h>
#include <stdio.h>
#include <stdlib.h>

static inline int32_t mc_add(int32_t a, int32_t b) { return (int32_t)((uint32_t)a + (uint32_t)b); }
static inline int32_t mc_sub(int32_t a, int32_t b) { return (int32_t)((uint32_t)a - (uint32_t)b); }
static inline int32_t mc_mul(int32_t a, int32_t b) { return (int32_t)((uint32_t)a * (uint32_t)b); }

static inline int32_t mc_div(int32_t a, int32_t b) {
  if (b == 0) {
    fflush(stdout);
    fputs("integer division by zero\n", stderr);
    exit(70);
  }
  if (a == INT32_MIN && b == -1) return a;
  return a / b;
}

static inline int32_t mc_fptosi(float f) {
  if (isnan(f)) return 0;
  if (f >= 2147483647.0f) return INT32_MAX;
  if (f <= -2147483648.0f) return INT32_MIN;
  return (int32_t)f;
}
`

// Prototypes declares the runtime entry points for translations that link
// against a separately built runtime.
const Prototypes = `void print_int(int32_t v);
void print_float(float v);
void print_str(const char *s);
int32_t read_int(void);
float read_float(void);
`

// RuntimeC implements the runtime entry points with the C calling
// convention. Reads take one whitespace-separated word; a missing or
// malformed word reads as zero.
const RuntimeC = `void print_int(int32_t v) { printf("%" PRId32, v); }

void print_float(float v) {
  if (isinf(v)) {
    fputs(v > 0 ? "inf" : "-inf", stdout);
  } else if (isnan(v)) {
    fputs("nan", stdout);
  } else {
    printf("%g", (double)v);
  }
}

void print_str(const char *s) { fputs(s, stdout); }

static int mc_word(char *buf) {
  fflush(stdout);
  return scanf("%63s", buf) == 1;
}

int32_t read_int(void) {
  char buf[64];
  char *end;
  long v;
  if (!mc_word(buf)) return 0;
  errno = 0;
  v = strtol(buf, &end, 10);
  if (*end != '\0' || errno != 0 || v < INT32_MIN || v > INT32_MAX) return 0;
  return (int32_t)v;
}

float read_float(void) {
  char buf[64];
  char *end;
  float v;
  if (!mc_word(buf)) return 0.0f;
  errno = 0;
  v = strtof(buf, &end);
  if (*end != '\0' || errno != 0) return 0.0f;
  return v;
}
`
